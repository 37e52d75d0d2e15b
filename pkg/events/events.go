package events

import (
	"time"

	"github.com/go-go-golems/figaro/pkg/conversation"
)

type EventType string

const (
	// EventTypeMessage is published whenever a message is appended or the
	// displayed content of the active assistant message changes.
	EventTypeMessage EventType = "message"
	// EventTypeLoading marks busy-state transitions of a session.
	EventTypeLoading EventType = "loading"
	// EventTypeError carries the human-readable error surfaced to the UI.
	EventTypeError EventType = "error"
	// EventTypeSession is published on session lifecycle changes
	// (create/select/rename/delete/model change).
	EventTypeSession EventType = "session"
)

// Event is the payload distributed to UI subscribers.
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"sessionId"`
	Time      time.Time             `json:"time"`
	Message   *conversation.Message `json:"message,omitempty"`
	Loading   bool                  `json:"loading,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func NewMessageEvent(sessionID string, msg *conversation.Message) Event {
	return Event{Type: EventTypeMessage, SessionID: sessionID, Time: time.Now(), Message: msg}
}

func NewLoadingEvent(sessionID string, loading bool) Event {
	return Event{Type: EventTypeLoading, SessionID: sessionID, Time: time.Now(), Loading: loading}
}

func NewErrorEvent(sessionID string, errMsg string) Event {
	return Event{Type: EventTypeError, SessionID: sessionID, Time: time.Now(), Error: errMsg}
}

func NewSessionEvent(sessionID string) Event {
	return Event{Type: EventTypeSession, SessionID: sessionID, Time: time.Now()}
}
