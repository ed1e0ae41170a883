package penpal

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpeningMessage(t *testing.T) {
	for i := 0; i < 20; i++ {
		msg := OpeningMessage()
		assert.Equal(t, SenderBot, msg.Sender)
		assert.Contains(t, openingMessages, msg.Text)
	}
}

func TestMessageLogReplaceAt(t *testing.T) {
	log := NewMessageLog(OpeningMessage())
	log.Append(ChatMessage{Sender: SenderUser, Text: "Help me"})
	slot := log.Append(ChatMessage{Sender: SenderBot})

	require.NoError(t, log.ReplaceAt(slot, ChatMessage{Sender: SenderBot, Text: "Sure"}))
	last, ok := log.Last()
	require.True(t, ok)
	assert.Equal(t, "Sure", last.Text)
	assert.Equal(t, 3, log.Len())
}

func TestMessageLogReplaceAtRejectsUserMessages(t *testing.T) {
	log := NewMessageLog()
	slot := log.Append(ChatMessage{Sender: SenderUser, Text: "Mine"})

	assert.Error(t, log.ReplaceAt(slot, ChatMessage{Sender: SenderBot, Text: "Overwritten"}))
	assert.Equal(t, "Mine", log.Snapshot()[0].Text)
}

func TestMessageLogResetInvalidatesSlots(t *testing.T) {
	log := NewMessageLog()
	slot := log.Append(ChatMessage{Sender: SenderBot})

	log.Reset(ChatMessage{Sender: SenderBot, Text: "Hello"})

	assert.ErrorIs(t, log.ReplaceAt(slot, ChatMessage{Sender: SenderBot, Text: "late"}), ErrStaleSlot)
	assert.Equal(t, []ChatMessage{{Sender: SenderBot, Text: "Hello"}}, log.Snapshot())
}

func TestMessageLogOutOfRange(t *testing.T) {
	log := NewMessageLog()
	assert.ErrorIs(t, log.ReplaceAt(Slot{Index: 3}, ChatMessage{Sender: SenderBot}), ErrIndexOutOfRange)

	_, ok := log.Last()
	assert.False(t, ok)
}

func TestMessageLogJSONRoundTrip(t *testing.T) {
	want := []ChatMessage{
		{Sender: SenderBot, Text: "Hi! I'm PenPal AI."},
		{Sender: SenderUser, Text: "Is my thesis clear?"},
	}
	data, err := json.Marshal(NewMessageLog(want...))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"sender":"bot","text":"Hi! I'm PenPal AI."},{"sender":"user","text":"Is my thesis clear?"}]`, string(data))

	got, err := ParseMessages(string(data))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMessagesInvalid(t *testing.T) {
	_, err := ParseMessages("not json")
	assert.Error(t, err)
}

func TestMessageListAddHistory(t *testing.T) {
	ml := NewMessageList(SystemMessage("system"))
	ml.AddHistory([]ChatMessage{
		{Sender: SenderBot, Text: "Hello"},
		{Sender: SenderUser, Text: "Question"},
	})
	ml.Add(UserMessage("final"))

	want := []Message{
		{Role: RoleSystem, Content: "system"},
		{Role: RoleAssistant, Content: "Hello"},
		{Role: RoleUser, Content: "Question"},
		{Role: RoleUser, Content: "final"},
	}
	if diff := cmp.Diff(want, ml.All()); diff != "" {
		t.Errorf("request messages mismatch (-want +got):\n%s", diff)
	}

	clone := ml.Clone()
	clone.Add(AssistantMessage("extra"))
	assert.Equal(t, 4, ml.Len())
	assert.Equal(t, 5, clone.Len())
}
