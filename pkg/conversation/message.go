package conversation

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// CodeBlock is a fenced code block extracted from an assistant reply.
// Execution output is filled in by an external runner.
type CodeBlock struct {
	ID          string `json:"id"`
	Language    string `json:"language"`
	Code        string `json:"code"`
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
	IsExecuting bool   `json:"isExecuting,omitempty"`
}

// Message is a single user or assistant turn in a session.
//
// A message is immutable once appended, with one exception: the
// alternative-navigation fields (Content as displayed, OriginalContent,
// Alternatives, CurrentAlternativeIndex) are mutated in place by the
// branching operations in branch.go, and only ever on the assistant
// message of the most recent exchange.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	IsVoice    bool        `json:"isVoice,omitempty"`
	Language   string      `json:"language,omitempty"`
	WebSearch  bool        `json:"webSearch,omitempty"`
	CodeBlocks []CodeBlock `json:"codeBlocks,omitempty"`

	// Branch state. OriginalContent holds the first-ever response once a
	// turn has been regenerated; Alternatives holds the persisted
	// responses in generation order (slot 0 is the original).
	OriginalContent         string   `json:"originalContent,omitempty"`
	Alternatives            []string `json:"alternatives,omitempty"`
	CurrentAlternativeIndex int      `json:"currentAlternativeIndex,omitempty"`
}

type MessageOption func(*Message)

func WithTime(t time.Time) MessageOption {
	return func(m *Message) {
		m.Timestamp = t
	}
}

func WithVoice(isVoice bool) MessageOption {
	return func(m *Message) {
		m.IsVoice = isVoice
	}
}

func WithLanguage(code string) MessageOption {
	return func(m *Message) {
		m.Language = code
	}
}

func WithWebSearch(webSearch bool) MessageOption {
	return func(m *Message) {
		m.WebSearch = webSearch
	}
}

func WithCodeBlocks(blocks []CodeBlock) MessageOption {
	return func(m *Message) {
		m.CodeBlocks = blocks
	}
}

func NewMessage(role Role, content string, options ...MessageOption) *Message {
	ret := &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	for _, option := range options {
		option(ret)
	}

	return ret
}

func NewUserMessage(content string, options ...MessageOption) *Message {
	return NewMessage(RoleUser, content, options...)
}

func NewAssistantMessage(content string, options ...MessageOption) *Message {
	return NewMessage(RoleAssistant, content, options...)
}

// Thread is an ordered list of messages, oldest first.
type Thread []*Message

// Window returns the most recent limit messages in chronological order.
// A limit <= 0 returns the whole thread.
func (t Thread) Window(limit int) Thread {
	if limit <= 0 || len(t) <= limit {
		return t
	}
	return t[len(t)-limit:]
}

// LastUserIndex returns the index of the most recent user message, or -1.
func (t Thread) LastUserIndex() int {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// ActiveAssistantIndex returns the index of the assistant message belonging
// to the most recent exchange, or -1 if the last user turn has no reply yet.
// Only this message may be regenerated or navigated.
func (t Thread) ActiveAssistantIndex() int {
	if len(t) == 0 {
		return -1
	}
	if last := t[len(t)-1]; last.Role == RoleAssistant {
		return len(t) - 1
	}
	return -1
}
