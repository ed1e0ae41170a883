// Package sse consumes a chat-completion stream: raw body chunks are decoded,
// split into data records and parsed into text deltas, one chunk at a time.
package sse

import (
	"errors"
	"io"
	"log/slog"
)

// DefaultBufferSize is the size of a single body read.
const DefaultBufferSize = 4 * 1024

// Reader yields the text deltas of a completion stream. The shape follows
// ssestream.Stream:
//
//	for r.Next() {
//		text += r.Delta()
//	}
//	if err := r.Err(); err != nil { ... }
//
// Every chunk read from the body is fully decoded, split and parsed before the
// next read is issued.
type Reader struct {
	body    io.Reader
	buf     []byte
	decoder *Decoder
	split   *Splitter
	logger  *slog.Logger

	queue     []string
	delta     string
	completed bool
	eof       bool
	err       error
	skipped   int
}

type Option func(*Reader)

func WithBufferSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.buf = make([]byte, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader wraps a response body.
func NewReader(body io.Reader, opts ...Option) *Reader {
	r := &Reader{
		body:    body,
		decoder: NewDecoder(),
		split:   NewSplitter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.buf == nil {
		r.buf = make([]byte, DefaultBufferSize)
	}
	return r
}

// Next advances to the next non-empty delta. It returns false once the
// sentinel was seen, the body ended, or the body failed; check Err and
// Completed to tell those apart.
func (r *Reader) Next() bool {
	r.delta = ""
	for {
		if r.completed {
			return false
		}

		for len(r.queue) > 0 {
			record := r.queue[0]
			r.queue = r.queue[1:]

			event, err := Parse(record)
			if err != nil {
				r.skipped++
				r.logger.Warn("Skipping malformed stream event", "error", err)
				continue
			}
			switch event.Kind {
			case EventDone:
				r.completed = true
				r.queue = nil
				return false
			case EventDelta:
				r.delta = event.Delta
				return true
			}
		}

		if r.err != nil || r.eof {
			return false
		}
		r.fill()
	}
}

// fill performs one body read and queues the records it completed.
func (r *Reader) fill() {
	n, err := r.body.Read(r.buf)
	if n > 0 {
		text := r.decoder.Decode(r.buf[:n])
		r.queue = append(r.queue, r.split.Push(text)...)
	}
	if err == nil {
		return
	}
	if errors.Is(err, io.EOF) {
		r.eof = true
		if dropped := r.decoder.Flush(); dropped > 0 {
			r.logger.Debug("Dropping incomplete trailing bytes", "bytes", dropped)
		}
		r.queue = append(r.queue, r.split.Flush()...)
		return
	}
	r.err = err
}

// Delta returns the text delta produced by the last call to Next.
func (r *Reader) Delta() string {
	return r.delta
}

// Err returns the read error that stopped the stream, if any. Reaching the end
// of the body or the sentinel is not an error.
func (r *Reader) Err() error {
	return r.err
}

// Completed reports whether the terminal sentinel was received.
func (r *Reader) Completed() bool {
	return r.completed
}

// Skipped is the number of malformed events that were dropped.
func (r *Reader) Skipped() int {
	return r.skipped
}
