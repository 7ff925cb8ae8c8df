package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/core"
)

// SecretHeader authenticates the triage daemon to the backend
const SecretHeader = "X-Webhook-Secret"

// Request is the webhook call body sent by the triage daemon
type Request struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Server exposes the composer over HTTP
type Server struct {
	composer *Composer
	cache    ReplyCache
	secret   string
	srv      *http.Server
	logger   *zap.Logger
}

// NewServer creates the webhook server. secret empty disables the header
// check; cache nil disables reply caching.
func NewServer(addr, secret string, composer *Composer, cache ReplyCache, logger *zap.Logger) *Server {
	s := &Server{
		composer: composer,
		cache:    cache,
		secret:   secret,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Webhook backend listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.secret != "" && r.Header.Get(SecretHeader) != s.secret {
		s.logger.Warn("Webhook call with bad secret", zap.String("remote", r.RemoteAddr))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Body) == "" {
		writeJSON(w, s.logger, map[string]string{"status": "ignored", "reason": "empty body"})
		return
	}

	sender := core.NormalizeAddress(req.From)
	if s.cache != nil {
		if cached, err := s.cache.Get(r.Context(), sender); err == nil {
			s.logger.Debug("Serving cached reply", zap.String("sender", sender))
			writeJSON(w, s.logger, cached)
			return
		} else if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("Reply cache lookup failed", zap.Error(err))
		}
	}

	start := time.Now()
	resp := s.composer.Compose(r.Context(), req.Body)
	s.logger.Info("Reply composed",
		zap.String("sender", sender),
		zap.Duration("elapsed", time.Since(start)))

	if s.cache != nil {
		if err := s.cache.Put(r.Context(), sender, resp); err != nil {
			s.logger.Warn("Reply cache store failed", zap.Error(err))
		}
	}
	writeJSON(w, s.logger, resp)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
