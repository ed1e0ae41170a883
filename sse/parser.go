package sse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

const (
	// Prefix marks a record as an event.
	Prefix = "data:"
	// Sentinel is the payload of the last event of a completion stream.
	Sentinel = "[DONE]"

	deltaPath = "choices.0.delta.content"
)

// ErrMalformedEvent is returned for payloads that are not valid JSON. It is
// recoverable: the stream carries on with the next event.
var ErrMalformedEvent = errors.New("malformed event payload")

type EventKind int

const (
	// EventNoop is a well-formed event without text, e.g. the role announcement.
	EventNoop EventKind = iota
	EventDelta
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventDelta:
		return "delta"
	case EventDone:
		return "done"
	default:
		return "noop"
	}
}

// Event is one parsed data record.
type Event struct {
	Kind  EventKind
	Delta string
}

// Parse extracts the event carried by a data record.
func Parse(record string) (Event, error) {
	payload := strings.TrimLeftFunc(record, unicode.IsSpace)
	payload = strings.TrimPrefix(payload, Prefix)
	payload = strings.TrimSpace(payload)

	if payload == Sentinel {
		return Event{Kind: EventDone}, nil
	}
	if !gjson.Valid(payload) {
		return Event{}, fmt.Errorf("%w: %q", ErrMalformedEvent, clip(payload, 64))
	}

	content := gjson.Get(payload, deltaPath)
	if content.Type != gjson.String || content.Str == "" {
		return Event{Kind: EventNoop}, nil
	}
	return Event{Kind: EventDelta, Delta: content.Str}, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
