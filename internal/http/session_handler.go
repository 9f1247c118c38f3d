package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/shopdesk/internal/domain"
	"github.com/fjod/shopdesk/internal/session"
)

type SessionHandler struct {
	gate    *session.Gate
	logger  *slog.Logger
	timeout time.Duration
}

func NewSessionHandler(gate *session.Gate, logger *slog.Logger, timeout time.Duration) *SessionHandler {
	return &SessionHandler{
		gate:    gate,
		logger:  logger,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	State string       `json:"state"`
	User  *domain.User `json:"user,omitempty"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.current())
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.gate.Login(ctx, req.Email, req.Password); err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, h.current())
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.gate.Logout(ctx); err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, h.current())
}

func (h *SessionHandler) current() SessionResponse {
	resp := SessionResponse{State: h.gate.State().String()}
	if u, ok := h.gate.User(); ok {
		resp.User = &u
	}
	return resp
}
