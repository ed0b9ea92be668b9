package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/generator"
	"smartmeeting/invitation"
	"smartmeeting/observability"
	"smartmeeting/publisher"
	"smartmeeting/store"
)

const (
	Version    = "1.0.0"
	moduleName = "SmartMeetingAI"

	maxBodyBytes = 1 << 20
	// recentActivityLimit is how many distributions the dashboard lists.
	recentActivityLimit = 5
)

// Deps are the collaborators the HTTP layer is built from. Metrics may be nil.
type Deps struct {
	Store     store.Store
	Gateway   *generator.Gateway
	Renderer  *invitation.Renderer
	Publisher *publisher.Publisher
	Sessions  *auth.Sessions
	Metrics   *observability.Collector
	Logger    *zap.Logger
	Errors    *apperrors.Handler

	// MailFrom is the organizer address written into calendar invites.
	MailFrom       string
	AllowedOrigins []string
}

type Server struct {
	store     store.Store
	gateway   *generator.Gateway
	renderer  *invitation.Renderer
	publisher *publisher.Publisher
	sessions  *auth.Sessions
	metrics   *observability.Collector
	logger    *zap.Logger
	errors    *apperrors.Handler
	validate  *validator.Validate

	mailFrom       string
	allowedOrigins []string
	now            func() time.Time
}

func New(d Deps) (*Server, error) {
	switch {
	case d.Store == nil:
		return nil, errors.New("store required")
	case d.Gateway == nil:
		return nil, errors.New("generation gateway required")
	case d.Renderer == nil:
		return nil, errors.New("renderer required")
	case d.Publisher == nil:
		return nil, errors.New("publisher required")
	case d.Sessions == nil:
		return nil, errors.New("sessions required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Errors == nil {
		d.Errors = apperrors.NewHandler(d.Logger, false)
	}

	return &Server{
		store:          d.Store,
		gateway:        d.Gateway,
		renderer:       d.Renderer,
		publisher:      d.Publisher,
		sessions:       d.Sessions,
		metrics:        d.Metrics,
		logger:         d.Logger,
		errors:         d.Errors,
		validate:       newValidator(),
		mailFrom:       d.MailFrom,
		allowedOrigins: d.AllowedOrigins,
		now:            time.Now,
	}, nil
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.instrument)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/me", s.handleMe)
		r.Delete("/api/account", s.handleDeleteAccount)
		r.Get("/api/dashboard", s.handleDashboard)

		r.Route("/api/templates", func(r chi.Router) {
			r.Post("/generate", s.handleGenerate)
			r.Get("/", s.handleListTemplates)
			r.Get("/{id}", s.handleGetTemplate)
			r.Get("/{id}/download", s.handleDownload)
			r.Get("/{id}/calendar", s.handleCalendarFile)
		})

		r.Route("/api/distribution", func(r chi.Router) {
			r.Post("/email", s.handleDispatchEmail)
			r.Post("/messaging", s.handleDispatchMessaging)
			r.Post("/calendar", s.handleDispatchCalendar)
		})
		r.Get("/api/distributions", s.handleListDistributions)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errors.Handle(w, r, apperrors.NewNotFoundError("Route"))
	})
	return r
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required")
		}
		return apperrors.NewValidationError(fmt.Sprintf("Invalid JSON body: %v", err))
	}
	if dec.More() {
		return apperrors.NewValidationError("Request body must contain a single JSON object")
	}
	return nil
}

// storeError maps store sentinels onto application errors.
func storeError(err error, resource string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewNotFoundError(resource)
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewConflictError(resource + " already exists")
	default:
		return apperrors.NewInternalError("storage failure", err)
	}
}
