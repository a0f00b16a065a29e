package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/storage"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// Fail maps err to a status and writes it. Business failures carry their message;
// anything else is logged and answered with a generic 500.
func Fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		Error(w, status, "internal server error")
		return
	}
	if status == http.StatusServiceUnavailable {
		log.Warn("transaction conflict", zap.Error(err))
		Error(w, status, "the server is busy, retry the request")
		return
	}
	log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	Error(w, status, err.Error())
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, game.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, storage.ErrTxConflict):
		return http.StatusServiceUnavailable
	case game.IsBusiness(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("respond: encode payload failed", zap.Error(err))
	}
}
