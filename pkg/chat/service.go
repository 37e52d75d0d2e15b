package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/engine"
	"github.com/go-go-golems/figaro/pkg/events"
	"github.com/go-go-golems/figaro/pkg/lang"
	"github.com/go-go-golems/figaro/pkg/session"
	"github.com/go-go-golems/figaro/pkg/websearch"
)

// ErrSessionBusy is returned when a send or regenerate is attempted while a
// request for the same session is already in flight. The UI disables input
// while loading; this guard catches re-entrant calls anyway.
var ErrSessionBusy = errors.New("session already has a request in flight")

const (
	errMsgNotConfigured = "API key not configured. Please set the FIGARO_MISTRAL_API_KEY environment variable."
	errMsgRequestFailed = "Failed to get response from AI. Please try again."
)

// Service is the turn orchestrator: it builds the request window for each
// user intent, dispatches it to the engine and folds the reply back into
// the session store and branch state.
//
// Per-session busy flags allow different sessions to have concurrent
// in-flight requests while a single session never has more than one.
// Recoverable failures never leave a partial assistant message behind.
type Service struct {
	store     *session.Store
	engine    engine.Engine
	searcher  websearch.Searcher
	detector  lang.Detector
	publisher *events.Publisher

	mu      sync.Mutex
	busy    map[string]bool
	lastErr string
}

type ServiceOption func(*Service)

func WithSearcher(searcher websearch.Searcher) ServiceOption {
	return func(s *Service) {
		s.searcher = searcher
	}
}

func WithDetector(detector lang.Detector) ServiceOption {
	return func(s *Service) {
		s.detector = detector
	}
}

func WithPublisher(publisher *events.Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func NewService(store *session.Store, eng engine.Engine, options ...ServiceOption) *Service {
	ret := &Service{
		store:    store,
		engine:   eng,
		searcher: websearch.NewMockSearcher(),
		detector: lang.WhatlangDetector{},
		busy:     map[string]bool{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Send appends a user turn and requests an assistant reply. On failure the
// ledger keeps the user turn, the error is stored on the service state and
// nothing is appended.
func (s *Service) Send(ctx context.Context, sessionID string, content string, isVoice bool) error {
	if strings.TrimSpace(content) == "" {
		log.Debug().Str("session_id", sessionID).Msg("ignoring empty message")
		return nil
	}

	sess := s.store.Get(sessionID)
	if sess == nil {
		return errors.Errorf("unknown session %s", sessionID)
	}

	s.clearError()
	if !s.engine.Configured() {
		s.failConfiguration(sessionID)
		return nil
	}

	if !s.acquire(sessionID) {
		return ErrSessionBusy
	}
	defer s.release(sessionID)

	language := s.detector.Detect(content)
	s.store.SetLanguage(sessionID, language)

	prior := s.store.History(sessionID, 0)
	userMsg := conversation.NewUserMessage(content,
		conversation.WithVoice(isVoice),
		conversation.WithLanguage(language),
	)
	if err := s.store.AppendMessage(sessionID, userMsg); err != nil {
		return err
	}
	s.publishBlind(events.NewMessageEvent(sessionID, userMsg))
	s.saveBlind()

	systemPrompt := DefaultSystemPrompt
	if language != lang.DefaultLanguage {
		systemPrompt = systemPrompt + "\n\n" + lang.SystemPrompt(language)
	}
	payload := buildPayload(systemPrompt, prior, userMsg)

	reply, err := s.dispatch(ctx, sessionID, sess, payload)
	if err != nil {
		return nil
	}

	text, blocks := conversation.ExtractCodeBlocks(reply)
	assistantMsg := conversation.NewAssistantMessage(text,
		conversation.WithCodeBlocks(blocks),
		conversation.WithVoice(isVoice),
		conversation.WithLanguage(language),
	)
	if err := s.store.AppendMessage(sessionID, assistantMsg); err != nil {
		return err
	}
	s.publishBlind(events.NewMessageEvent(sessionID, assistantMsg))
	s.saveBlind()

	return nil
}

// Regenerate re-issues the last user turn without appending a new user
// message. The previous reply is preserved as a branch alternative; the
// ledger length never changes. Turns without a user message, and turns
// whose reply came from a web search, are no-ops.
func (s *Service) Regenerate(ctx context.Context, sessionID string) error {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return errors.Errorf("unknown session %s", sessionID)
	}

	history := s.store.History(sessionID, 0)
	lastUserIdx := history.LastUserIndex()
	if lastUserIdx < 0 {
		return nil
	}
	if idx := history.ActiveAssistantIndex(); idx >= 0 && history[idx].WebSearch {
		log.Debug().Str("session_id", sessionID).Msg("web search replies cannot be regenerated")
		return nil
	}

	s.clearError()
	if !s.engine.Configured() {
		s.failConfiguration(sessionID)
		return nil
	}

	if !s.acquire(sessionID) {
		return ErrSessionBusy
	}
	defer s.release(sessionID)

	userMsg := history[lastUserIdx]
	systemPrompt := DefaultSystemPrompt
	if sess.Language != "" && sess.Language != lang.DefaultLanguage {
		systemPrompt = systemPrompt + "\n\n" + lang.SystemPrompt(sess.Language)
	}
	// The current assistant reply is dropped from the context window; it
	// survives in the branch state, not in what the model sees.
	payload := buildPayload(systemPrompt, history[:lastUserIdx], userMsg)

	reply, err := s.dispatch(ctx, sessionID, sess, payload)
	if err != nil {
		return nil
	}

	text, blocks := conversation.ExtractCodeBlocks(reply)

	activeIdx := history.ActiveAssistantIndex()
	if activeIdx < 0 {
		// The previous attempt failed and no reply was ever appended;
		// there is no branch yet, so this is a plain append.
		assistantMsg := conversation.NewAssistantMessage(text,
			conversation.WithCodeBlocks(blocks),
			conversation.WithLanguage(sess.Language),
		)
		if err := s.store.AppendMessage(sessionID, assistantMsg); err != nil {
			return err
		}
		s.publishBlind(events.NewMessageEvent(sessionID, assistantMsg))
		s.saveBlind()
		return nil
	}

	if err := history.RecordAlternative(text); err != nil {
		return err
	}
	active := history[activeIdx]
	active.CodeBlocks = blocks

	s.publishBlind(events.NewMessageEvent(sessionID, active))
	s.saveBlind()
	return nil
}

// SendWithWebSearch is Send with the search collaborator's formatted
// results injected into the system instruction. The resulting reply is
// tagged as web-search and excluded from regeneration.
func (s *Service) SendWithWebSearch(ctx context.Context, sessionID string, content string, isVoice bool) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	sess := s.store.Get(sessionID)
	if sess == nil {
		return errors.Errorf("unknown session %s", sessionID)
	}

	s.clearError()
	if !s.engine.Configured() {
		s.failConfiguration(sessionID)
		return nil
	}

	if !s.acquire(sessionID) {
		return ErrSessionBusy
	}
	defer s.release(sessionID)

	s.publishBlind(events.NewLoadingEvent(sessionID, true))
	results, err := s.searcher.Search(ctx, content)
	if err != nil {
		s.publishBlind(events.NewLoadingEvent(sessionID, false))
		s.setError(sessionID, errMsgRequestFailed)
		log.Warn().Err(err).Str("session_id", sessionID).Msg("web search failed")
		return nil
	}
	s.publishBlind(events.NewLoadingEvent(sessionID, false))

	language := s.detector.Detect(content)
	s.store.SetLanguage(sessionID, language)

	prior := s.store.History(sessionID, 0)
	userMsg := conversation.NewUserMessage(content,
		conversation.WithVoice(isVoice),
		conversation.WithLanguage(language),
	)
	if err := s.store.AppendMessage(sessionID, userMsg); err != nil {
		return err
	}
	s.publishBlind(events.NewMessageEvent(sessionID, userMsg))
	s.saveBlind()

	systemPrompt := fmt.Sprintf(
		"%s\n\nUse the following search results to answer the user's question:\n\n%s",
		DefaultSystemPrompt, results)
	payload := buildPayload(systemPrompt, prior, userMsg)

	reply, err := s.dispatch(ctx, sessionID, sess, payload)
	if err != nil {
		return nil
	}

	text, blocks := conversation.ExtractCodeBlocks(reply)
	assistantMsg := conversation.NewAssistantMessage(text,
		conversation.WithCodeBlocks(blocks),
		conversation.WithVoice(isVoice),
		conversation.WithLanguage(language),
		conversation.WithWebSearch(true),
	)
	if err := s.store.AppendMessage(sessionID, assistantMsg); err != nil {
		return err
	}
	s.publishBlind(events.NewMessageEvent(sessionID, assistantMsg))
	s.saveBlind()

	return nil
}

// Navigate moves the displayed alternative of the active assistant message
// by one, without wrap-around at either end.
func (s *Service) Navigate(sessionID string, direction conversation.Direction) error {
	sess := s.store.Get(sessionID)
	if sess == nil {
		return errors.Errorf("unknown session %s", sessionID)
	}

	history := s.store.History(sessionID, 0)
	if !history.Navigate(direction) {
		return nil
	}

	active := history[history.ActiveAssistantIndex()]
	s.publishBlind(events.NewMessageEvent(sessionID, active))
	s.saveBlind()
	return nil
}

// dispatch sends the payload to the engine while the session is marked
// loading, and converts failures into the surfaced error state.
func (s *Service) dispatch(ctx context.Context, sessionID string, sess *session.Session, payload conversation.Thread) (string, error) {
	s.publishBlind(events.NewLoadingEvent(sessionID, true))
	defer s.publishBlind(events.NewLoadingEvent(sessionID, false))

	log.Debug().
		Str("session_id", sessionID).
		Str("model", string(sess.Model)).
		Int("payload_size", len(payload)).
		Msg("dispatching turn")

	reply, err := s.engine.Complete(ctx, sess.Model, payload)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("turn failed")
		switch engine.KindOf(err) {
		case engine.ErrorKindConfiguration:
			s.setError(sessionID, errMsgNotConfigured)
		default:
			s.setError(sessionID, errMsgRequestFailed)
		}
		return "", err
	}

	return reply, nil
}

// Busy reports whether the session has a request in flight.
func (s *Service) Busy(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[sessionID]
}

// Err returns the current surfaced error, empty when there is none. It is
// cleared at the start of the next operation attempt.
func (s *Service) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[sessionID] {
		return false
	}
	s.busy[sessionID] = true
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, sessionID)
}

func (s *Service) clearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Service) setError(sessionID string, msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
	s.publishBlind(events.NewErrorEvent(sessionID, msg))
}

func (s *Service) failConfiguration(sessionID string) {
	log.Warn().Str("session_id", sessionID).Msg("no API key configured, refusing to send")
	s.setError(sessionID, errMsgNotConfigured)
}

func (s *Service) publishBlind(ev events.Event) {
	if s.publisher != nil {
		s.publisher.PublishBlind(ev)
	}
}

func (s *Service) saveBlind() {
	if err := s.store.Save(); err != nil {
		log.Warn().Err(err).Msg("failed to persist chat state")
	}
}
