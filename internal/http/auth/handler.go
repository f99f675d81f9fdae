// Package auth serves the development token endpoint. Production deployments
// get their tokens from the identity provider sharing JWT_SECRET.
package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contas/internal/auth"
	"github.com/MrJamesThe3rd/contas/internal/http/response"
)

type Handler struct {
	jwt *auth.JWTManager
	ttl time.Duration
}

func NewHandler(jwt *auth.JWTManager, ttl time.Duration) *Handler {
	return &Handler{jwt: jwt, ttl: ttl}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/token", h.token)
}

type tokenRequest struct {
	UserID string `json:"userId"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	token, err := h.jwt.Generate(userID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresIn: int(h.ttl.Seconds()),
	})
}
