package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/models"
)

// Engine sends a prepared message window to a chat model and returns the
// assistant reply as a single content string.
type Engine interface {
	// Complete dispatches the messages (system prompt first, user turn
	// last) to the given model. The context is passed through to the
	// underlying HTTP call.
	Complete(ctx context.Context, model models.ModelID, messages conversation.Thread) (string, error)
	// Configured reports whether the engine can make calls at all. The
	// orchestrator checks this before mutating any state so that a missing
	// API key never leaves a half-appended turn behind.
	Configured() bool
}

// MistralEngine talks to Mistral's OpenAI-compatible chat completion API.
type MistralEngine struct {
	settings *Settings
}

var _ Engine = (*MistralEngine)(nil)

func NewMistralEngine(settings *Settings) *MistralEngine {
	if settings == nil {
		settings = NewSettings()
	}
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}
	return &MistralEngine{settings: settings}
}

func (e *MistralEngine) Configured() bool {
	return e.settings.APIKey != ""
}

func (e *MistralEngine) makeClient() (*go_openai.Client, error) {
	if e.settings.APIKey == "" {
		return nil, NewConfigurationError("no Mistral API key configured")
	}
	config := go_openai.DefaultConfig(e.settings.APIKey)
	config.BaseURL = e.settings.BaseURL
	return go_openai.NewClientWithConfig(config), nil
}

func (e *MistralEngine) Complete(ctx context.Context, model models.ModelID, messages conversation.Thread) (string, error) {
	client, err := e.makeClient()
	if err != nil {
		return "", err
	}

	req := go_openai.ChatCompletionRequest{
		Model:    string(model),
		Messages: make([]go_openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, go_openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	if e.settings.Temperature != nil {
		req.Temperature = float32(*e.settings.Temperature)
	}
	if e.settings.TopP != nil {
		req.TopP = float32(*e.settings.TopP)
	}
	if e.settings.MaxResponseTokens != nil {
		req.MaxTokens = *e.settings.MaxResponseTokens
	}

	log.Debug().
		Str("model", string(model)).
		Int("num_messages", len(req.Messages)).
		Msg("dispatching chat completion")

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Kind: ErrorKindAPI, Err: errors.New("completion response contained no choices")}
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyError maps go-openai failures onto our error kinds. API errors
// carry the provider status; everything else is a transport failure.
func classifyError(err error) error {
	var apiErr *go_openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Kind: ErrorKindAPI,
			Err:  errors.Wrapf(err, "api returned status %d", apiErr.HTTPStatusCode),
		}
	}

	var reqErr *go_openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Kind: ErrorKindAPI,
			Err:  errors.Wrapf(err, "request failed with status %d", reqErr.HTTPStatusCode),
		}
	}

	return &Error{Kind: ErrorKindNetwork, Err: err}
}
