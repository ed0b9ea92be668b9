package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/store"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Success bool         `json:"success"`
	User    *store.Owner `json:"user"`
	Token   string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		s.errors.Handle(w, r, validationError(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.errors.Handle(w, r, apperrors.NewInternalError("could not hash password", err))
		return
	}
	owner := &store.Owner{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := s.store.CreateOwner(r.Context(), owner); err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.errors.Handle(w, r, apperrors.NewConflictError("Email or username already registered"))
			return
		}
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}
	s.logger.Info("owner registered", zap.String("owner_id", owner.ID))

	s.startSession(w, r, owner, http.StatusCreated)
}

// handleLogin never creates accounts; an unknown email and a wrong password
// get the same answer after the same bcrypt work.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errors.Handle(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errors.Handle(w, r, validationError(err))
		return
	}

	owner, err := s.store.GetOwnerByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}
	if owner == nil {
		_ = auth.RejectUnknown(req.Password)
		s.errors.Handle(w, r, apperrors.NewUnauthorizedError("Invalid credentials"))
		return
	}
	if auth.CheckPassword(owner.PasswordHash, req.Password) != nil {
		s.errors.Handle(w, r, apperrors.NewUnauthorizedError("Invalid credentials"))
		return
	}

	s.startSession(w, r, owner, http.StatusOK)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, owner *store.Owner, status int) {
	token, expires, err := s.sessions.Issue(owner.ID, owner.Email)
	if err != nil {
		s.errors.Handle(w, r, apperrors.NewInternalError("could not issue session", err))
		return
	}
	s.sessions.SetCookie(w, token, expires)
	writeJSON(w, status, sessionResponse{Success: true, User: owner, Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	owner, err := s.store.GetOwner(r.Context(), ownerID(r))
	if err != nil {
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": owner})
}

// handleDeleteAccount removes the caller together with their templates and distributions.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := ownerID(r)
	if err := s.store.DeleteOwner(r.Context(), id); err != nil {
		s.errors.Handle(w, r, storeError(err, "Owner"))
		return
	}
	s.logger.Info("owner deleted", zap.String("owner_id", id))
	s.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Account deleted"})
}
