package penpal

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/boat-builder/penpal/sse"
)

// DefaultPacing is the delay between two visible updates of a streaming reply.
const DefaultPacing = 20 * time.Millisecond

// StreamState is the outcome of one streamed exchange. It is never persisted.
type StreamState struct {
	AccumulatedText string
	IsComplete      bool
}

// Accumulator turns a completion stream into a growing reply. Deltas are
// collected as fast as the network delivers them; publishing to observers is
// paced on a separate goroutine so the typing cadence never stalls the reads.
type Accumulator struct {
	Pacing     time.Duration
	BufferSize int
	logger     *slog.Logger
}

func NewAccumulator(pacing time.Duration, logger *slog.Logger) *Accumulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accumulator{
		Pacing: pacing,
		logger: logger,
	}
}

// Run consumes body until the sentinel, the end of the body, a read error or
// cancellation. publish receives the full text so far, once per delta, in
// order. The returned state always holds every delta that was read; on a read
// error it comes with a *StreamError carrying the same partial text.
func (a *Accumulator) Run(ctx context.Context, body io.Reader, publish func(text string)) (StreamState, error) {
	reader := sse.NewReader(body, sse.WithLogger(a.logger), sse.WithBufferSize(a.BufferSize))

	p := newPacer(a.Pacing, publish)
	go p.run(ctx)

	var text strings.Builder
	for ctx.Err() == nil && reader.Next() {
		text.WriteString(reader.Delta())
		p.push(reader.Delta())
	}
	p.close()
	<-p.done

	state := StreamState{
		AccumulatedText: text.String(),
		IsComplete:      reader.Completed(),
	}
	if reader.Skipped() > 0 {
		a.logger.Warn("Stream had malformed events", "skipped", reader.Skipped())
	}

	if err := ctx.Err(); err != nil {
		return state, context.Cause(ctx)
	}
	if err := reader.Err(); err != nil {
		return state, &StreamError{Partial: state.AccumulatedText, Err: err}
	}
	return state, nil
}

// pacer publishes queued deltas one at a time with a fixed delay between them.
// The queue is unbounded so push never blocks the reader.
type pacer struct {
	interval time.Duration
	publish  func(string)

	mu      sync.Mutex
	pending []string
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newPacer(interval time.Duration, publish func(string)) *pacer {
	if publish == nil {
		publish = func(string) {}
	}
	return &pacer{
		interval: interval,
		publish:  publish,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (p *pacer) push(delta string) {
	p.mu.Lock()
	p.pending = append(p.pending, delta)
	p.mu.Unlock()
	p.signal()
}

func (p *pacer) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.signal()
}

func (p *pacer) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *pacer) run(ctx context.Context) {
	defer close(p.done)

	var text strings.Builder
	published := false
	for {
		p.mu.Lock()
		batch := p.pending
		p.pending = nil
		closed := p.closed
		p.mu.Unlock()

		for _, delta := range batch {
			if published && p.interval > 0 {
				timer := time.NewTimer(p.interval)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return
			}
			text.WriteString(delta)
			p.publish(text.String())
			published = true
		}

		// nothing is pushed after close, so this batch was the last one
		if closed {
			return
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}
	}
}
