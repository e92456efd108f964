package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm,omitempty"`
}

type sessionResponse struct {
	User session.User `json:"user"`
}

func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	u, err := h.d.Session.Require()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.d.Session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// fresh stock for the sale screen
	if _, err := h.d.Products.Load(r.Context()); err != nil {
		h.d.Logger.Warn("load products after login failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: u})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.d.Session.Register(r.Context(), req.Email, req.Password, req.Confirm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: u})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.d.Session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
