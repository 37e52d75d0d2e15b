package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/figaro/pkg/chat"
	"github.com/go-go-golems/figaro/pkg/conversation"
	"github.com/go-go-golems/figaro/pkg/engine"
	"github.com/go-go-golems/figaro/pkg/events"
	"github.com/go-go-golems/figaro/pkg/models"
	"github.com/go-go-golems/figaro/pkg/session"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API for the browser frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := buildStore()
			publisher := buildPublisher()
			service := chat.NewService(store,
				engine.NewMistralEngine(engineSettings()),
				chat.WithPublisher(publisher),
			)

			server := &apiServer{
				store:     store,
				service:   service,
				publisher: publisher,
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/api/models", server.modelsHandler)
			mux.HandleFunc("/api/sessions", server.sessionsHandler)
			mux.HandleFunc("/api/sessions/", server.sessionHandler)
			mux.HandleFunc("/api/send", server.sendHandler)
			mux.HandleFunc("/api/regenerate", server.regenerateHandler)
			mux.HandleFunc("/api/navigate", server.navigateHandler)
			mux.HandleFunc("/api/state", server.stateHandler)
			mux.HandleFunc("/api/events", server.eventsHandler)

			addr := fmt.Sprintf(":%d", port)
			log.Info().Str("addr", addr).Msg("starting chat API server")
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	return cmd
}

type apiServer struct {
	store     *session.Store
	service   *chat.Service
	publisher *events.Publisher
}

type sendRequest struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
	IsVoice   bool   `json:"isVoice"`
	WebSearch bool   `json:"webSearch"`
}

type sessionRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Model string `json:"model,omitempty"`
}

type navigateRequest struct {
	SessionID string `json:"sessionId"`
	Direction string `json:"direction"`
}

func (s *apiServer) modelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{"models": models.List()})
}

func (s *apiServer) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]interface{}{
			"sessions":         s.store.List(),
			"currentSessionId": s.store.CurrentID(),
		})
	case http.MethodPost:
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		id := s.store.CreateSession(req.Name, models.ModelID(req.Model))
		if s.publisher != nil {
			s.publisher.PublishBlind(events.NewSessionEvent(id))
		}
		s.saveBlind()
		writeJSON(w, s.store.Get(id))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// sessionHandler routes /api/sessions/{id}[/rename|/model|/select].
func (s *apiServer) sessionHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	if id == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodDelete && action == "":
		s.store.DeleteSession(id)
		s.publishSessionEvent(s.store.CurrentID())
		s.saveBlind()
		writeJSON(w, map[string]string{"currentSessionId": s.store.CurrentID()})

	case r.Method == http.MethodPost && action == "select":
		s.store.SelectSession(id)
		s.publishSessionEvent(s.store.CurrentID())
		s.saveBlind()
		writeJSON(w, map[string]string{"currentSessionId": s.store.CurrentID()})

	case r.Method == http.MethodPost && action == "rename":
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s.store.RenameSession(id, req.Name)
		s.publishSessionEvent(id)
		s.saveBlind()
		writeJSON(w, s.store.Get(id))

	case r.Method == http.MethodPost && action == "model":
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		s.store.ChangeModel(id, models.ModelID(req.Model))
		s.publishSessionEvent(id)
		s.saveBlind()
		writeJSON(w, s.store.Get(id))

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *apiServer) sendHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.store.CurrentID()
	}

	var err error
	if req.WebSearch {
		err = s.service.SendWithWebSearch(r.Context(), req.SessionID, req.Content, req.IsVoice)
	} else {
		err = s.service.Send(r.Context(), req.SessionID, req.Content, req.IsVoice)
	}
	s.writeTurnResult(w, req.SessionID, err)
}

func (s *apiServer) regenerateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.store.CurrentID()
	}

	err := s.service.Regenerate(r.Context(), req.SessionID)
	s.writeTurnResult(w, req.SessionID, err)
}

func (s *apiServer) navigateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.store.CurrentID()
	}

	err := s.service.Navigate(req.SessionID, conversation.Direction(req.Direction))
	s.writeTurnResult(w, req.SessionID, err)
}

func (s *apiServer) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	current := s.store.CurrentID()
	writeJSON(w, map[string]interface{}{
		"currentSessionId": current,
		"loading":          s.service.Busy(current),
		"error":            s.service.Err(),
	})
}

// eventsHandler streams chat events as server-sent events.
func (s *apiServer) eventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgs, err := s.publisher.Subscribe(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to chat events")
		http.Error(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			flusher.Flush()
			msg.Ack()
		}
	}
}

func (s *apiServer) writeTurnResult(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, chat.ErrSessionBusy) {
		http.Error(w, "session busy", http.StatusConflict)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"session": s.store.Get(sessionID),
		"error":   s.service.Err(),
	})
}

func (s *apiServer) publishSessionEvent(id string) {
	if s.publisher != nil {
		s.publisher.PublishBlind(events.NewSessionEvent(id))
	}
}

func (s *apiServer) saveBlind() {
	if err := s.store.Save(); err != nil {
		log.Warn().Err(err).Msg("failed to persist chat state")
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
