package penpal

// SessionConfig is what the student has typed next to the essay. It travels
// with every request rather than living on the session, so the caller may
// change it between requests.
type SessionConfig struct {
	Essay              string `toml:"-"`
	Tone               string `toml:"tone"`
	Style              string `toml:"style"`
	CustomInstructions string `toml:"notes"`
	RubricText         string `toml:"-"`
}

const (
	DefaultTone  = "encouraging"
	DefaultStyle = "Concise"
)
