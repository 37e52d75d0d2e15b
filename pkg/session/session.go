package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/models"
)

// Session is an independent, named conversation. It is the sole owner of
// its message thread.
type Session struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"createdAt"`
	Model     models.ModelID      `json:"model"`
	Language  string              `json:"language,omitempty"`
	Messages  conversation.Thread `json:"messages"`
}

func NewSession(name string, model models.ModelID) *Session {
	if name == "" {
		name = conversation.DefaultSessionName
	}
	if model == "" {
		model = models.DefaultModel
	}
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
		Model:     model,
		Messages:  conversation.Thread{},
	}
}
