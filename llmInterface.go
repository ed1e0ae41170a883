package penpal

import (
	"context"
	"io"
)

// LLM defines the minimal contract the session needs from a completion
// provider. Complete is one request with the whole answer in the response;
// Stream returns the raw event-stream body, which the caller must close.
type LLM interface {
	Complete(ctx context.Context, messages *MessageList) (*Completion, error)
	Stream(ctx context.Context, messages *MessageList) (io.ReadCloser, error)
}

// Completion is the answer to a non-streaming request.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}
