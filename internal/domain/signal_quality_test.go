package domain

import (
	"math"
	"testing"
	"time"
)

func TestClassifyAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		accuracy float64
		want     QualityLevel
	}{
		{name: "negative means no fix", accuracy: -1, want: QualityNoSignal},
		{name: "zero is full", accuracy: 0, want: QualityFull},
		{name: "just below full threshold", accuracy: 9.9, want: QualityFull},
		{name: "full threshold is good", accuracy: AccuracyFull, want: QualityGood},
		{name: "just below good threshold", accuracy: 69.9, want: QualityGood},
		{name: "good threshold is average", accuracy: AccuracyGood, want: QualityAverage},
		{name: "just below average threshold", accuracy: 199.9, want: QualityAverage},
		{name: "average threshold is poor", accuracy: AccuracyAverage, want: QualityPoor},
		{name: "far away is poor", accuracy: 5000, want: QualityPoor},
		{name: "nan", accuracy: math.NaN(), want: QualityNoSignal},
		{name: "positive infinity", accuracy: math.Inf(1), want: QualityNoSignal},
		{name: "negative infinity", accuracy: math.Inf(-1), want: QualityNoSignal},
	}

	for _, tt := range tests {
		if got := ClassifyAccuracy(tt.accuracy); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
		if again := ClassifyAccuracy(tt.accuracy); again != tt.want {
			t.Fatalf("%s: second call got %v want %v", tt.name, again, tt.want)
		}
	}
}

func TestClassifyReading(t *testing.T) {
	if got := Classify(nil); got != QualityUnknown {
		t.Fatalf("expected unknown for absent reading, got %v", got)
	}

	reading := Reading{HorizontalAccuracy: 35, Timestamp: time.Unix(100, 0)}
	if got := Classify(&reading); got != QualityGood {
		t.Fatalf("expected good, got %v", got)
	}
}

func TestClassifyLatestUsesLastReading(t *testing.T) {
	if got := ClassifyLatest(nil); got != QualityUnknown {
		t.Fatalf("expected unknown for empty batch, got %v", got)
	}

	batch := []Reading{
		{HorizontalAccuracy: 500},
		{HorizontalAccuracy: 3},
	}
	if got := ClassifyLatest(batch); got != QualityFull {
		t.Fatalf("expected full from last reading, got %v", got)
	}
}

func TestQualityBars(t *testing.T) {
	if QualityUnknown.Bars() != 0 || QualityNoSignal.Bars() != 0 {
		t.Fatalf("expected zero bars for unknown and no signal")
	}
	if QualityFull.Bars() != MaxBars {
		t.Fatalf("expected %d bars for full, got %d", MaxBars, QualityFull.Bars())
	}

	levels := []QualityLevel{QualityUnknown, QualityNoSignal, QualityPoor, QualityAverage, QualityGood, QualityFull}
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if cur.Bars() < prev.Bars() {
			t.Fatalf("bars decrease from %v to %v", prev, cur)
		}
		if prev >= QualityPoor && cur.Bars() <= prev.Bars() {
			t.Fatalf("bars must strictly increase from %v to %v", prev, cur)
		}
	}
}

func TestQualityLevelString(t *testing.T) {
	tests := []struct {
		level QualityLevel
		want  string
	}{
		{level: QualityUnknown, want: "unknown"},
		{level: QualityNoSignal, want: "no_signal"},
		{level: QualityPoor, want: "poor"},
		{level: QualityAverage, want: "average"},
		{level: QualityGood, want: "good"},
		{level: QualityFull, want: "full"},
		{level: QualityLevel(42), want: "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Fatalf("level %d: got %q want %q", int(tt.level), got, tt.want)
		}
	}
}
