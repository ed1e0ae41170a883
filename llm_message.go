package penpal

import (
	"github.com/openai/openai-go"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// MessageList holds an ordered collection of request messages.
type MessageList struct {
	Messages []Message
}

func NewMessageList(msgs ...Message) *MessageList {
	return &MessageList{
		Messages: append([]Message{}, msgs...),
	}
}

func (ml *MessageList) Len() int {
	return len(ml.Messages)
}

// Add appends one or more new messages to the MessageList in a FIFO order.
func (ml *MessageList) Add(msgs ...Message) {
	ml.Messages = append(ml.Messages, msgs...)
}

// AddHistory appends the chat transcript, mapping bot turns to the assistant role.
func (ml *MessageList) AddHistory(history []ChatMessage) {
	for _, msg := range history {
		if msg.Sender == SenderUser {
			ml.Add(UserMessage(msg.Text))
		} else {
			ml.Add(AssistantMessage(msg.Text))
		}
	}
}

func (ml *MessageList) All() []Message {
	return ml.Messages
}

// Last returns the final message, or false when the list is empty.
func (ml *MessageList) Last() (Message, bool) {
	if len(ml.Messages) == 0 {
		return Message{}, false
	}
	return ml.Messages[len(ml.Messages)-1], true
}

func (ml *MessageList) Clone() *MessageList {
	return NewMessageList(ml.Messages...)
}

func (ml *MessageList) toParams() []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(ml.Messages))
	for _, msg := range ml.Messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return params
}
