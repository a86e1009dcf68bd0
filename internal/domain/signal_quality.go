package domain

import "math"

// Horizontal accuracy thresholds in meters. A reading falls into the first
// level whose threshold it is strictly below.
const (
	AccuracyFull    = 10.0
	AccuracyGood    = 70.0
	AccuracyAverage = 200.0
)

// MaxBars is the bar count of the best quality level.
const MaxBars = 4

// QualityLevel is the discrete positioning signal quality. Levels are ordered
// from worst to best so they can be compared with < and >.
type QualityLevel int

const (
	QualityUnknown QualityLevel = iota
	QualityNoSignal
	QualityPoor
	QualityAverage
	QualityGood
	QualityFull
)

// Bars returns the number of filled indicator bars for the level.
func (q QualityLevel) Bars() int {
	switch q {
	case QualityPoor:
		return 1
	case QualityAverage:
		return 2
	case QualityGood:
		return 3
	case QualityFull:
		return MaxBars
	default:
		return 0
	}
}

// Lost reports whether the level means the signal is gone.
func (q QualityLevel) Lost() bool {
	return q == QualityNoSignal
}

func (q QualityLevel) String() string {
	switch q {
	case QualityNoSignal:
		return "no_signal"
	case QualityPoor:
		return "poor"
	case QualityAverage:
		return "average"
	case QualityGood:
		return "good"
	case QualityFull:
		return "full"
	default:
		return "unknown"
	}
}

// Classify maps the latest reading to a quality level. A nil reading means
// nothing has been delivered yet.
func Classify(reading *Reading) QualityLevel {
	if reading == nil {
		return QualityUnknown
	}

	return ClassifyAccuracy(reading.HorizontalAccuracy)
}

// ClassifyLatest classifies the last reading of a delivered batch.
func ClassifyLatest(readings []Reading) QualityLevel {
	if len(readings) == 0 {
		return QualityUnknown
	}

	return Classify(&readings[len(readings)-1])
}

// ClassifyAccuracy maps a horizontal accuracy in meters to a quality level.
// Negative and non-finite values mean there is no usable fix.
func ClassifyAccuracy(accuracy float64) QualityLevel {
	if accuracy < 0 || math.IsNaN(accuracy) || math.IsInf(accuracy, 0) {
		return QualityNoSignal
	}
	switch {
	case accuracy < AccuracyFull:
		return QualityFull
	case accuracy < AccuracyGood:
		return QualityGood
	case accuracy < AccuracyAverage:
		return QualityAverage
	default:
		return QualityPoor
	}
}
