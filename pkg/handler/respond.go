package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response",
			logger.Error(err),
			logger.Component("handler"),
		)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: message})
}

// respondAuthError maps gateway sentinels to HTTP statuses. Unexpected
// errors are logged and reported as an opaque 500.
func (h *Handler) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		h.respondError(w, r, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		h.respondError(w, r, http.StatusConflict, "email already registered")
	case errors.Is(err, auth.ErrUnknownProvider):
		h.respondError(w, r, http.StatusNotFound, "unknown provider")
	case errors.Is(err, auth.ErrInvalidState):
		h.respondError(w, r, http.StatusBadRequest, "invalid or expired state")
	case errors.Is(err, auth.ErrProviderExchange),
		errors.Is(err, auth.ErrNoProviderEmail):
		h.respondError(w, r, http.StatusBadGateway, "provider exchange failed")
	case errors.Is(err, auth.ErrHookVeto):
		h.respondError(w, r, http.StatusForbidden, "rejected by policy")
	case errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		h.respondError(w, r, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound):
		h.respondError(w, r, http.StatusNotFound, "user not found")
	default:
		h.log.Error("unexpected auth error",
			logger.Error(err),
			logger.Component("handler"),
		)
		h.respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}
