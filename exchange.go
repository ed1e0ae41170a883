package penpal

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// exchangeSlot tracks the in-flight request of one kind. Beginning a new
// exchange cancels the previous one with ErrSuperseded.
type exchangeSlot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

type exchange struct {
	ctx    context.Context
	id     string
	seq    uint64
	slot   *exchangeSlot
	cancel context.CancelCauseFunc
}

func (s *exchangeSlot) begin(ctx context.Context) *exchange {
	id := uuid.NewString()
	ctx = context.WithValue(ctx, ContextKey("exchangeID"), id)
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.seq++
	s.cancel = cancel
	return &exchange{ctx: ctx, id: id, seq: s.seq, slot: s, cancel: cancel}
}

// abandon cancels the in-flight exchange and invalidates its results.
func (s *exchangeSlot) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
		s.cancel = nil
	}
	s.seq++
}

// commit runs fn only while e is the latest exchange of its kind. The slot
// stays locked during fn so a newer exchange cannot start halfway through.
func (e *exchange) commit(fn func()) bool {
	e.slot.mu.Lock()
	defer e.slot.mu.Unlock()
	if e.slot.seq != e.seq {
		return false
	}
	fn()
	return true
}

func (e *exchange) end() {
	e.slot.mu.Lock()
	if e.slot.seq == e.seq {
		e.slot.cancel = nil
	}
	e.slot.mu.Unlock()
	e.cancel(context.Canceled)
}

func (e *exchange) superseded() bool {
	return errors.Is(context.Cause(e.ctx), ErrSuperseded)
}
