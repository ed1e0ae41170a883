package sse

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns raw body chunks into text. A multi-byte sequence that is split
// across two chunks is held back until the rest of it arrives, so every rune is
// emitted exactly once no matter where the network cut the bytes.
type Decoder struct {
	transformer transform.Transformer
	pending     []byte
	dst         []byte
}

// NewDecoder returns a streaming UTF-8 decoder. Invalid bytes decode to U+FFFD.
func NewDecoder() *Decoder {
	return &Decoder{
		transformer: unicode.UTF8.NewDecoder(),
	}
}

// Decode decodes one chunk. It never fails; an incomplete trailing sequence is
// buffered for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}
	if len(src) == 0 {
		return ""
	}

	// every invalid source byte can grow into a three byte replacement rune
	if need := 3*len(src) + utf8.UTFMax; cap(d.dst) < need {
		d.dst = make([]byte, need)
	}
	dst := d.dst[:cap(d.dst)]

	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.transformer.Transform(dst, src, false)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String()
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return out.String()
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
				d.dst = dst
			}
		default:
			out.WriteRune(utf8.RuneError)
			src = src[1:]
		}
	}
	return out.String()
}

// Pending reports how many bytes are waiting for the rest of their sequence.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

// Flush is called once the body is closed. Bytes of a sequence that never
// completed are dropped; the count is returned so callers can log it.
func (d *Decoder) Flush() int {
	dropped := len(d.pending)
	d.pending = nil
	d.transformer.Reset()
	return dropped
}
