package receiver

import (
	"time"

	"github.com/skobkin/gpsreader/internal/domain"
)

// DecodedSentence is a parsed NMEA line with an optional position reading.
type DecodedSentence struct {
	Type    string
	Reading *domain.Reading
}

// Codec turns raw receiver lines into domain readings.
type Codec interface {
	Decode(line string, at time.Time) (DecodedSentence, error)
}
