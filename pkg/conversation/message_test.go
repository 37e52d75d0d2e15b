package conversation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageDefaults(t *testing.T) {
	before := time.Now()
	msg := NewUserMessage("hello")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.Timestamp.Before(before))
	assert.False(t, msg.IsVoice)
	assert.False(t, msg.WebSearch)
}

func TestMessageOptions(t *testing.T) {
	ts := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	msg := NewAssistantMessage("bonjour",
		WithTime(ts),
		WithVoice(true),
		WithLanguage("fr"),
		WithWebSearch(true),
		WithCodeBlocks([]CodeBlock{{ID: "1", Language: "go", Code: "x := 1"}}),
	)

	assert.Equal(t, ts, msg.Timestamp)
	assert.True(t, msg.IsVoice)
	assert.Equal(t, "fr", msg.Language)
	assert.True(t, msg.WebSearch)
	require.Len(t, msg.CodeBlocks, 1)
	assert.Equal(t, "go", msg.CodeBlocks[0].Language)
}

func TestThreadWindow(t *testing.T) {
	thread := make(Thread, 0, 5)
	for _, content := range []string{"a", "b", "c", "d", "e"} {
		thread = append(thread, NewUserMessage(content))
	}

	window := thread.Window(3)
	require.Len(t, window, 3)
	assert.Equal(t, "c", window[0].Content)
	assert.Equal(t, "e", window[2].Content)

	assert.Len(t, thread.Window(0), 5)
	assert.Len(t, thread.Window(-1), 5)
	assert.Len(t, thread.Window(10), 5)
}

func TestLastUserIndex(t *testing.T) {
	thread := Thread{
		NewUserMessage("q1"),
		NewAssistantMessage("a1"),
		NewUserMessage("q2"),
		NewAssistantMessage("a2"),
	}
	assert.Equal(t, 2, thread.LastUserIndex())

	assert.Equal(t, -1, Thread{}.LastUserIndex())
	assert.Equal(t, -1, Thread{NewAssistantMessage("a")}.LastUserIndex())
}

func TestActiveAssistantIndex(t *testing.T) {
	thread := Thread{
		NewUserMessage("q1"),
		NewAssistantMessage("a1"),
	}
	assert.Equal(t, 1, thread.ActiveAssistantIndex())

	// A pending user turn means no assistant message is active, even
	// though earlier replies exist.
	thread = append(thread, NewUserMessage("q2"))
	assert.Equal(t, -1, thread.ActiveAssistantIndex())

	assert.Equal(t, -1, Thread{}.ActiveAssistantIndex())
}

func TestMessageJSONOmitsEmptyBranchState(t *testing.T) {
	data, err := json.Marshal(NewUserMessage("hello"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "alternatives")
	assert.NotContains(t, string(data), "originalContent")
	assert.NotContains(t, string(data), "webSearch")
}
