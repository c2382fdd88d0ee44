package ticket_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/sse"

	"github.com/go-chi/chi/v5"
)

type BatchDispatcher interface {
	SendBatch(ctx context.Context, guests []models.Guest, event models.EventConfig) models.BatchResult
	Preview(guest models.Guest, event models.EventConfig) (string, error)
}

type SettingsService interface {
	EventConfig(ctx context.Context) (models.EventConfig, error)
	SaveEventConfig(ctx context.Context, cfg models.EventConfig) (models.EventConfig, error)
	LastSequence(ctx context.Context) (int64, error)
	IncrementSequence(ctx context.Context, quantity int64) (int64, error)
	ResetSequence(ctx context.Context) error
}

type Handler struct {
	Dispatcher   BatchDispatcher
	Settings     SettingsService
	Events       *sse.DispatchEventEmitter
	Logger       *logger.Logger
	MaxBodyBytes int64
}

func NewHandler(dispatcher BatchDispatcher, settings SettingsService, events *sse.DispatchEventEmitter, log *logger.Logger, maxBodyBytes int64) *Handler {
	return &Handler{
		Dispatcher:   dispatcher,
		Settings:     settings,
		Events:       events,
		Logger:       log,
		MaxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the two legacy endpoints at the root and the full
// API under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send-emails", h.SendEmails)
	r.Post("/preview-email", h.PreviewEmail)

	r.Route("/api", func(r chi.Router) {
		r.Post("/send-emails", h.SendEmails)
		r.Post("/preview-email", h.PreviewEmail)
		r.Post("/codes", h.AssignCodes)

		r.Get("/event-config", h.GetEventConfig)
		r.Put("/event-config", h.SaveEventConfig)

		r.Get("/sequence", h.GetSequence)
		r.Post("/sequence/increment", h.IncrementSequence)
		r.Post("/sequence/reset", h.ResetSequence)

		r.Get("/events/{eventID}/dispatch/stream", h.StreamDispatch)
	})
}

// RequestLogger logs every request through the category logger.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status), time.Since(start).String())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if h.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// eventConfigFor returns the request's config, or the saved one when the
// request carried none.
func (h *Handler) eventConfigFor(ctx context.Context, cfg *models.EventConfig) (models.EventConfig, error) {
	if cfg != nil && !cfg.IsZero() {
		return *cfg, nil
	}
	if h.Settings == nil {
		return models.EventConfig{}, nil
	}
	return h.Settings.EventConfig(ctx)
}
