package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/store"
)

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// instrument records request counts and latency under the matched route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

// requireAuth resolves the session to an existing owner and stores the
// identity in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessions.Validate(s.sessions.TokenFromRequest(r))
		if err != nil {
			msg := "Authentication required"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Session expired"
			}
			s.errors.Handle(w, r, apperrors.NewUnauthorizedError(msg).WithCause(err))
			return
		}

		owner, err := s.store.GetOwner(r.Context(), claims.Subject)
		if errors.Is(err, store.ErrNotFound) {
			s.errors.Handle(w, r, apperrors.NewUnauthorizedError("Account no longer exists"))
			return
		}
		if err != nil {
			s.errors.Handle(w, r, storeError(err, "Owner"))
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.Identity{OwnerID: owner.ID, Email: owner.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerID returns the authenticated caller. Routes behind requireAuth always have one.
func ownerID(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.OwnerID
}
