package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/commands"
)

const (
	playerCookie = "player_id"
	nameCookie   = "player_name"
)

// playerFrom reads the session cookies set by HandleIdentify
func playerFrom(r *http.Request) (id, name string, err error) {
	cookie, err := r.Cookie(playerCookie)
	if err != nil || cookie.Value == "" {
		return "", "", fmt.Errorf("no session")
	}
	id, name = cookie.Value, cookie.Value
	if c, err := r.Cookie(nameCookie); err == nil && c.Value != "" {
		name = c.Value
	}
	return id, name, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type result struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// statusFor maps a dispatch error to an HTTP status. The player already got
// the explanation in chat, so the body only carries the code.
func statusFor(err error) (int, result) {
	switch {
	case err == nil:
		return http.StatusOK, result{OK: true}
	case errors.Is(err, commands.ErrUnknownCommand):
		return http.StatusBadRequest, result{Code: "UNKNOWN_COMMAND", Error: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, result{Error: "request cancelled"}
	case apperr.IsUserFacing(err):
		code := apperr.CodeOf(err)
		status := http.StatusConflict
		switch code {
		case apperr.CodeInvalidArgument:
			status = http.StatusBadRequest
		case apperr.CodePermissionDenied:
			status = http.StatusForbidden
		case apperr.CodeNoSession:
			status = http.StatusNotFound
		}
		return status, result{Code: string(code), Error: apperr.Message(err)}
	default:
		return http.StatusInternalServerError, result{Error: "internal error"}
	}
}
