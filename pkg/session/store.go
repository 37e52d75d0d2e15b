package session

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/models"
	"github.com/go-go-golems/figaro/pkg/persist"
)

// Store owns the session list and the currently selected session id.
//
// Invariant: there is always at least one session, and the current id
// always refers to an existing one. Deleting the current session moves
// selection to the last remaining session; deleting the last session
// creates a fresh default one before the call returns.
type Store struct {
	mu       sync.RWMutex
	sessions []*Session
	current  string
	blob     persist.BlobStore
}

// snapshot is the persisted JSON shape.
type snapshot struct {
	Sessions         []*Session `json:"sessions"`
	CurrentSessionID string     `json:"currentSessionId"`
}

func NewStore(blob persist.BlobStore) *Store {
	s := &Store{blob: blob}
	initial := NewSession(conversation.DefaultSessionName, models.DefaultModel)
	s.sessions = []*Session{initial}
	s.current = initial.ID
	return s
}

// CreateSession appends a new empty session, makes it current and returns
// its id.
func (s *Store) CreateSession(name string, model models.ModelID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := NewSession(name, model)
	s.sessions = append(s.sessions, sess)
	s.current = sess.ID

	log.Debug().Str("session_id", sess.ID).Str("model", string(sess.Model)).Msg("created session")
	return sess.ID
}

// SelectSession makes id current. Unknown ids are ignored so that current
// never points at a removed session.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		log.Warn().Str("session_id", id).Msg("ignoring select of unknown session")
		return
	}
	s.current = id
}

// DeleteSession removes the session. If it was current, the last remaining
// session in list order becomes current; if none remain, a fresh default
// session is created.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept

	if len(s.sessions) == 0 {
		sess := NewSession(conversation.DefaultSessionName, models.DefaultModel)
		s.sessions = []*Session{sess}
		s.current = sess.ID
		return
	}

	if s.current == id {
		s.current = s.sessions[len(s.sessions)-1].ID
	}
}

// RenameSession sets a new display name. Empty or whitespace-only names are
// rejected as a no-op.
func (s *Store) RenameSession(id string, newName string) {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.findLocked(id); sess != nil {
		sess.Name = trimmed
	}
}

// ChangeModel switches the model used for future turns of the session.
// Unknown models are rejected as a no-op.
func (s *Store) ChangeModel(id string, model models.ModelID) {
	if !models.IsValid(model) {
		log.Warn().Str("model", string(model)).Msg("ignoring change to unknown model")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.findLocked(id); sess != nil {
		sess.Model = model
	}
}

// SetLanguage records the session's conversation language.
func (s *Store) SetLanguage(id string, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.findLocked(id); sess != nil {
		sess.Language = code
	}
}

// Current returns the currently selected session.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(s.current)
}

// CurrentID returns the currently selected session id.
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get returns the session with the given id, or nil.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

// List returns the sessions in creation order.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]*Session, len(s.sessions))
	copy(ret, s.sessions)
	return ret
}

func (s *Store) findLocked(id string) *Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// AppendMessage pushes a message onto the session's thread. The first user
// message of a session also sets the session's display name.
func (s *Store) AppendMessage(id string, msg *conversation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(id)
	if sess == nil {
		return errors.Errorf("unknown session %s", id)
	}

	if msg.Role == conversation.RoleUser && len(sess.Messages) == 0 {
		sess.Name = conversation.DeriveSessionName(msg.Content)
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

// History returns the most recent limit messages of the session in
// chronological order. A limit <= 0 returns all of them.
func (s *Store) History(id string, limit int) conversation.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.findLocked(id)
	if sess == nil {
		return nil
	}

	window := sess.Messages.Window(limit)
	ret := make(conversation.Thread, len(window))
	copy(ret, window)
	return ret
}

// Save serializes the whole store to the blob store. Mutations call this
// fire-and-forget; the in-memory state stays the source of truth.
func (s *Store) Save() error {
	if s.blob == nil {
		return nil
	}

	s.mu.RLock()
	data, err := json.Marshal(snapshot{
		Sessions:         s.sessions,
		CurrentSessionID: s.current,
	})
	s.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "could not serialize chat state")
	}

	return s.blob.Save(data)
}

// Load replaces the store contents with the persisted snapshot. Missing or
// malformed data falls back to a single default session instead of failing.
func (s *Store) Load() {
	if s.blob == nil {
		return
	}

	data, err := s.blob.Load()
	if err != nil {
		if !errors.Is(err, persist.ErrNotFound) {
			log.Warn().Err(err).Msg("could not load chat state, starting fresh")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Warn().Err(err).Msg("persisted chat state is malformed, starting fresh")
		return
	}
	if len(snap.Sessions) == 0 {
		return
	}

	for _, sess := range snap.Sessions {
		sess.Model = models.Migrate(sess.Model)
		if sess.Messages == nil {
			sess.Messages = conversation.Thread{}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = snap.Sessions
	s.current = snap.CurrentSessionID
	if s.findLocked(s.current) == nil {
		s.current = s.sessions[len(s.sessions)-1].ID
	}
}
