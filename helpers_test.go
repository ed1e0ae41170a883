package penpal

import (
	"fmt"
	"io"
	"strings"
)

// chunkReader hands out one predefined chunk per Read call, then err or EOF.
type chunkReader struct {
	chunks [][]byte
	err    error
	onEOF  func()
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.onEOF != nil {
			c.onEOF()
			c.onEOF = nil
		}
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func deltaEvent(content string) string {
	return fmt.Sprintf(`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`, content) + "\n\n"
}

// streamBody renders deltas the way the completion service streams them.
func streamBody(deltas ...string) string {
	var b strings.Builder
	b.WriteString(`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}` + "\n\n")
	for _, d := range deltas {
		b.WriteString(deltaEvent(d))
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}
