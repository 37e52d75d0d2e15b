package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/models"
)

func TestConfigured(t *testing.T) {
	assert.False(t, NewMistralEngine(&Settings{}).Configured())
	assert.True(t, NewMistralEngine(&Settings{APIKey: "key"}).Configured())
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	eng := NewMistralEngine(&Settings{})

	_, err := eng.Complete(context.Background(), models.DefaultModel, conversation.Thread{
		conversation.NewUserMessage("Hi"),
	})
	require.Error(t, err)
	assert.Equal(t, ErrorKindConfiguration, KindOf(err))
}

func TestCompleteSendsMessagesAndSampling(t *testing.T) {
	var captured go_openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := go_openai.ChatCompletionResponse{
			Choices: []go_openai.ChatCompletionChoice{
				{Message: go_openai.ChatCompletionMessage{Role: "assistant", Content: "Hello!"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	temperature := 0.7
	maxTokens := 512
	eng := NewMistralEngine(&Settings{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		Temperature:       &temperature,
		MaxResponseTokens: &maxTokens,
	})

	reply, err := eng.Complete(context.Background(), models.ModelCodestral, conversation.Thread{
		conversation.NewMessage(conversation.RoleSystem, "Be helpful."),
		conversation.NewUserMessage("Hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	assert.Equal(t, "codestral", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.Equal(t, 512, captured.MaxTokens)
}

func TestCompleteClassifiesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	eng := NewMistralEngine(&Settings{APIKey: "test-key", BaseURL: server.URL})

	_, err := eng.Complete(context.Background(), models.DefaultModel, conversation.Thread{
		conversation.NewUserMessage("Hi"),
	})
	require.Error(t, err)
	assert.Equal(t, ErrorKindAPI, KindOf(err))
}

func TestCompleteClassifiesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	eng := NewMistralEngine(&Settings{APIKey: "test-key", BaseURL: server.URL})

	_, err := eng.Complete(context.Background(), models.DefaultModel, conversation.Thread{
		conversation.NewUserMessage("Hi"),
	})
	require.Error(t, err)
	assert.Equal(t, ErrorKindNetwork, KindOf(err))
}

func TestKindOfUntypedError(t *testing.T) {
	assert.Equal(t, ErrorKindNetwork, KindOf(errors.New("plain failure")))
	assert.Equal(t, ErrorKindNetwork, KindOf(errors.Wrap(errors.New("inner"), "outer")))
}

func TestKindOfWrappedEngineError(t *testing.T) {
	err := errors.Wrap(NewConfigurationError("no key"), "completing turn")
	assert.Equal(t, ErrorKindConfiguration, KindOf(err))
}

func TestSettingsClone(t *testing.T) {
	temperature := 0.5
	original := &Settings{APIKey: "k", Temperature: &temperature}

	clone := original.Clone()
	*clone.Temperature = 0.9

	assert.InDelta(t, 0.5, *original.Temperature, 0.001)
	assert.Equal(t, "k", clone.APIKey)
}
