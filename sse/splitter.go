package sse

import (
	"strings"
	"unicode"
)

// Splitter cuts decoded text into newline-delimited records and keeps only the
// data lines. Chunk boundaries do not line up with line boundaries, so the
// unterminated tail of each push is carried over to the next one.
type Splitter struct {
	partial strings.Builder
}

// NewSplitter returns an empty Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Push consumes decoded text and returns every completed data line, in order.
func (s *Splitter) Push(text string) []string {
	var records []string
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			s.partial.WriteString(text)
			return records
		}

		line := text[:i]
		text = text[i+1:]
		if s.partial.Len() > 0 {
			s.partial.WriteString(line)
			line = s.partial.String()
			s.partial.Reset()
		}

		line = strings.TrimSuffix(line, "\r")
		if IsDataLine(line) {
			records = append(records, line)
		}
	}
}

// Flush returns the unterminated last line if it is a data line. Used when the
// body ends without a trailing newline.
func (s *Splitter) Flush() []string {
	line := strings.TrimSuffix(s.partial.String(), "\r")
	s.partial.Reset()
	if IsDataLine(line) {
		return []string{line}
	}
	return nil
}

// IsDataLine reports whether a record carries an event payload.
func IsDataLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), Prefix)
}
