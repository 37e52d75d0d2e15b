package chat

import (
	"github.com/go-go-golems/figaro/pkg/conversation"
)

// DefaultSystemPrompt is the assistant persona prepended to every request.
const DefaultSystemPrompt = "You are a helpful AI assistant. Answer in markdown and put code in fenced code blocks."

// historyWindowSize bounds how much prior conversation is sent per turn.
const historyWindowSize = 10

// fillerUserContent is appended when trimming would leave the payload
// ending on an assistant turn; the API contract requires a trailing user
// message.
const fillerUserContent = "please continue"

// buildPayload constructs the exact message window sent to the model: the
// system instruction, up to the last 10 prior messages oldest first, and
// the current user message.
func buildPayload(systemPrompt string, prior conversation.Thread, current *conversation.Message) conversation.Thread {
	payload := conversation.Thread{conversation.NewMessage(conversation.RoleSystem, systemPrompt)}
	payload = append(payload, prior.Window(historyWindowSize)...)
	if current != nil {
		payload = append(payload, current)
	}

	if payload[len(payload)-1].Role != conversation.RoleUser {
		payload = append(payload, conversation.NewUserMessage(fillerUserContent))
	}

	return payload
}
