package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/models/dto"
)

// TickClock reports the last simulation tick.
type TickClock interface {
	LastTick() time.Time
}

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	clock     TickClock
}

// NewHealthHandler creates a health endpoint handler. clock may be nil.
func NewHealthHandler(startedAt time.Time, clock TickClock) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, clock: clock}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := dto.Health{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if h.clock != nil {
		if last := h.clock.LastTick(); !last.IsZero() {
			body.LastTick = last.Format(time.RFC3339)
		}
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
