package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// NMEA 0183 caps sentences at 82 characters. Proprietary sentences from some
// receivers run longer, so allow some slack before resyncing.
const maxSentenceLen = 256

var ErrSentenceTooLong = errors.New("nmea sentence too long")

// ctxReader turns a polling reader (one that returns 0, nil on timeout) into
// a reader that blocks until data arrives or the current context ends.
type ctxReader struct {
	src io.Reader
	ctx context.Context
}

func (r *ctxReader) Read(p []byte) (int, error) {
	for {
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := r.src.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

// sentenceReader splits a byte stream into NMEA sentences. Bytes before the
// '$' or '!' start marker are dropped, so a reader attached mid-sentence
// resynchronizes on the next one.
type sentenceReader struct {
	src *ctxReader
	br  *bufio.Reader
}

func newSentenceReader(src io.Reader) *sentenceReader {
	cr := &ctxReader{src: src, ctx: context.Background()}

	return &sentenceReader{src: cr, br: bufio.NewReader(cr)}
}

func (r *sentenceReader) ReadLine(ctx context.Context) (string, error) {
	r.src.ctx = ctx
	defer func() { r.src.ctx = context.Background() }()

	for {
		line, err := r.readOne()
		if errors.Is(err, ErrSentenceTooLong) {
			continue
		}
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

func (r *sentenceReader) readOne() (string, error) {
	var start byte
	for start != '$' && start != '!' {
		b, err := r.br.ReadByte()
		if err != nil {
			return "", err
		}
		start = b
	}

	var sb strings.Builder
	sb.WriteByte(start)
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\n':
			return strings.TrimRight(sb.String(), "\r "), nil
		case '$', '!':
			// A new sentence started before the previous one ended.
			sb.Reset()
			sb.WriteByte(b)

			continue
		}
		if sb.Len() >= maxSentenceLen {
			return "", ErrSentenceTooLong
		}
		sb.WriteByte(b)
	}
}
