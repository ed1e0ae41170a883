package penpal

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// FallbackText replaces a reply that could not be produced.
const FallbackText = "Something went wrong."

var openingMessages = []string{
	"Hey! I'm PenPal AI, ready when you are. I can help with structure, clarity, tone, or just typing things out.",
	"Hi there! I'm PenPal AI, your writing buddy. Need help brainstorming, rewording, or just getting started?",
	"I'm PenPal AI! Whenever you're ready, I can help make your writing smoother, sharper, or more *you*.",
	"Hi! I'm PenPal AI. Tell me where you're stuck. I'm great at untangling thoughts and tidying up drafts.",
	"Hello! I'm PenPal AI, and I love words. Want help making yours shine?",
}

// OpeningMessage picks the greeting a fresh conversation starts with.
func OpeningMessage() ChatMessage {
	return ChatMessage{Sender: SenderBot, Text: openingMessages[rand.IntN(len(openingMessages))]}
}

// ChatMessage is one entry of the visible conversation.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Slot addresses a message appended to a MessageLog. It stops being valid
// once the log is reset.
type Slot struct {
	Index      int
	generation uint64
}

// MessageLog owns the conversation. It only grows, except that a bot message
// may be rewritten in place while its reply streams in.
type MessageLog struct {
	mu         sync.RWMutex
	messages   []ChatMessage
	generation uint64
}

func NewMessageLog(msgs ...ChatMessage) *MessageLog {
	return &MessageLog{
		messages: append([]ChatMessage{}, msgs...),
	}
}

func (l *MessageLog) Append(msg ChatMessage) Slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	return Slot{Index: len(l.messages) - 1, generation: l.generation}
}

// ReplaceAt rewrites the bot message at slot. User messages are never rewritten.
func (l *MessageLog) ReplaceAt(slot Slot, msg ChatMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if slot.generation != l.generation {
		return ErrStaleSlot
	}
	if slot.Index < 0 || slot.Index >= len(l.messages) {
		return ErrIndexOutOfRange
	}
	if l.messages[slot.Index].Sender != SenderBot || msg.Sender != SenderBot {
		return fmt.Errorf("message %d: only bot messages can be replaced", slot.Index)
	}
	l.messages[slot.Index] = msg
	return nil
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

func (l *MessageLog) Last() (ChatMessage, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return ChatMessage{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Snapshot returns a copy safe to read while exchanges keep writing.
func (l *MessageLog) Snapshot() []ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]ChatMessage{}, l.messages...)
}

// Reset replaces the whole conversation and invalidates outstanding slots.
func (l *MessageLog) Reset(msgs ...ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append([]ChatMessage{}, msgs...)
	l.generation++
}

func (l *MessageLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Snapshot())
}

// ParseMessages decodes a persisted conversation.
func ParseMessages(data string) ([]ChatMessage, error) {
	var msgs []ChatMessage
	if err := json.Unmarshal([]byte(data), &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}
