// Package fakebackend serves an in-memory stand-in for the assistant
// service. It speaks the same wire protocol as the real one and is used by
// tests and by `parley fake-backend` for local development.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Replier produces the reply chunks for a user message.
type Replier func(message string) []string

// EchoReplier answers with the message echoed back word by word.
func EchoReplier(message string) []string {
	words := strings.Fields(message)
	chunks := make([]string, 0, len(words)+1)
	chunks = append(chunks, "You said:")
	for _, w := range words {
		chunks = append(chunks, " "+w)
	}
	return chunks
}

// Server is the fake assistant service.
type Server struct {
	token  string
	delay  time.Duration
	reply  Replier
	logger *zap.Logger

	mu      sync.Mutex
	history []parley.Message
}

// Option configures a [Server].
type Option func(*Server)

// WithToken requires every request to carry this bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithDelay pauses between reply chunks.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithReplier sets how replies are produced. The default is EchoReplier.
func WithReplier(r Replier) Option {
	return func(s *Server) { s.reply = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHistory seeds the stored conversation.
func WithHistory(msgs ...parley.Message) Option {
	return func(s *Server) { s.history = append(s.history, msgs...) }
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{reply: EchoReplier, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the service routes mounted under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/send-message", s.handleSend).Methods(http.MethodPost)
	api.HandleFunc("/user/chats", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/conversations", s.handleClear).Methods(http.MethodDelete)
	return r
}

// History returns the stored conversation.
func (s *Server) History() []parley.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]parley.Message(nil), s.history...)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			s.logger.Warn("rejected request", zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := parleyjson.UnmarshalSendRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	s.store(parley.RoleUser, req.Message)
	s.logger.Info("message received", zap.String("user_id", req.UserID), zap.Bool("specific_user", req.IsSpecificUser))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	var reply strings.Builder
	for _, c := range s.reply(req.Message) {
		if s.delay > 0 {
			select {
			case <-r.Context().Done():
				s.logger.Info("client went away", zap.Int("sent", reply.Len()))
				return
			case <-time.After(s.delay):
			}
		}
		payload, err := parleyjson.MarshalChunk(c)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
		reply.WriteString(c)
	}
	s.store(parley.RoleAssistant, reply.String())

	payload, _ := parleyjson.MarshalDone()
	_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	data, err := parleyjson.MarshalHistory(s.History())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := parleyjson.UnmarshalClearRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	s.logger.Info("history cleared", zap.String("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) store(role parley.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, parley.Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		Status:  parley.StatusComplete,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
