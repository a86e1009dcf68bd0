package receiver

import (
	"fmt"
	"math"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/skobkin/gpsreader/internal/domain"
)

// DefaultUERE is the user-equivalent range error, in meters, used to turn HDOP
// into an estimated horizontal accuracy.
const DefaultUERE = 5.0

// NMEACodec reads fix quality from GGA sentences.
type NMEACodec struct {
	uere float64
}

func NewNMEACodec(uere float64) *NMEACodec {
	if uere <= 0 || math.IsNaN(uere) || math.IsInf(uere, 0) {
		uere = DefaultUERE
	}

	return &NMEACodec{uere: uere}
}

func (c *NMEACodec) Decode(line string, at time.Time) (DecodedSentence, error) {
	line = strings.TrimSpace(line)
	out := DecodedSentence{Type: sentenceType(line)}

	sentence, err := nmea.Parse(line)
	if err != nil {
		if reading, ok := noFixGGA(line, at); ok {
			out.Reading = reading

			return out, nil
		}

		return out, fmt.Errorf("parse nmea sentence: %w", err)
	}
	out.Type = sentence.DataType()

	if sentence.DataType() != nmea.TypeGGA {
		return out, nil
	}
	gga, ok := sentence.(nmea.GGA)
	if !ok {
		return out, fmt.Errorf("unexpected gga sentence type %T", sentence)
	}

	reading := domain.Reading{
		HorizontalAccuracy: c.accuracy(gga),
		Timestamp:          at,
		Satellites:         int(gga.NumSatellites),
		HDOP:               gga.HDOP,
		Source:             gga.TalkerID(),
	}
	out.Reading = &reading

	return out, nil
}

// accuracy returns a negative value when the sentence carries no usable fix.
func (c *NMEACodec) accuracy(gga nmea.GGA) float64 {
	if gga.FixQuality == "" || gga.FixQuality == nmea.Invalid {
		return -1
	}
	if gga.HDOP <= 0 {
		return -1
	}

	return gga.HDOP * c.uere
}

// noFixGGA recognizes a GGA sentence from a receiver without a fix. Such
// sentences have empty position fields, which the parser may reject.
func noFixGGA(line string, at time.Time) (*domain.Reading, bool) {
	if sentenceType(line) != nmea.TypeGGA || !checksumValid(line) {
		return nil, false
	}
	body := line[1:strings.LastIndexByte(line, '*')]
	fields := strings.Split(body, ",")
	if len(fields) < 8 {
		return nil, false
	}
	if quality := fields[6]; quality != "" && quality != nmea.Invalid {
		return nil, false
	}
	talker := ""
	if len(fields[0]) >= 2 {
		talker = fields[0][:2]
	}

	return &domain.Reading{HorizontalAccuracy: -1, Timestamp: at, Source: talker}, true
}

func checksumValid(line string) bool {
	star := strings.LastIndexByte(line, '*')
	if star < 1 || len(line) < star+3 {
		return false
	}
	var sum byte
	for i := 1; i < star; i++ {
		sum ^= line[i]
	}

	return strings.EqualFold(fmt.Sprintf("%02X", sum), line[star+1:star+3])
}

// sentenceType extracts the type from an address field such as $GPGGA, so
// that sentences the parser rejects still get a label in debug output.
func sentenceType(line string) string {
	if len(line) < 6 || (line[0] != '$' && line[0] != '!') {
		return ""
	}
	address := line[1:]
	if i := strings.IndexByte(address, ','); i >= 0 {
		address = address[:i]
	}
	if strings.HasPrefix(address, "P") || len(address) < 5 {
		return address
	}

	return address[2:]
}
