// Package server exposes the validation engine over HTTP: a single
// and a bulk validation endpoint with JSON envelopes, plus health and
// Prometheus metrics endpoints.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/verimail/verimail"
	"github.com/verimail/verimail/types"
)

// DefaultMaxBulk is the largest accepted bulk request.
const DefaultMaxBulk = 1000

// Server wires the engine into an http.Handler.
type Server struct {
	validator *verimail.Validator
	log       *zap.Logger
	maxBulk   int
}

// Config carries the server knobs.
type Config struct {
	// MaxBulk caps the number of addresses in one bulk request.
	// Default: 1000.
	MaxBulk int
}

func New(v *verimail.Validator, log *zap.Logger, cfg Config) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBulk <= 0 {
		cfg.MaxBulk = DefaultMaxBulk
	}
	return &Server{validator: v, log: log, maxBulk: cfg.MaxBulk}
}

// Handler returns the routed handler with logging and panic recovery
// applied to the API endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/validate", s.wrap(s.handleValidate))
	mux.Handle("POST /api/v1/validate/bulk", s.wrap(s.handleBulk))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type validateRequest struct {
	Email   string         `json:"email"`
	Options *types.Options `json:"options"`
}

type bulkRequest struct {
	Emails  []string       `json:"emails"`
	Options *types.Options `json:"options"`
}

type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_BODY")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email address is required", "MISSING_EMAIL")
		return
	}

	res := s.validator.Validate(r.Context(), req.Email, req.Options)
	s.log.Debug("validated",
		zap.String("email", req.Email),
		zap.String("status", string(res.Status)),
		zap.Int("score", res.Score))
	writeData(w, res)
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "INVALID_BODY")
		return
	}
	if len(req.Emails) == 0 {
		writeError(w, http.StatusBadRequest, "Emails array is required", "MISSING_EMAILS")
		return
	}
	if len(req.Emails) > s.maxBulk {
		writeError(w, http.StatusBadRequest,
			"Maximum 1000 emails allowed per bulk request", "TOO_MANY_EMAILS")
		return
	}

	batch := s.validator.ValidateBatch(r.Context(), req.Emails, req.Options)
	s.log.Info("bulk validated",
		zap.Int("total", batch.Total),
		zap.Int("processed", batch.Processed),
		zap.Int64("elapsed_ms", batch.ValidationTimeMs))
	writeData(w, batch)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// wrap adds request logging and panic recovery.
func (s *Server) wrap(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				s.log.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", p))
				writeError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
			}
		}()
		h(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Error: msg, Code: code})
}
