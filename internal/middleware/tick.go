package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TickPerformer advances the simulation to now.
type TickPerformer interface {
	ShouldTick(now time.Time) bool
	PerformTick(ctx context.Context, now time.Time) (int, error)
}

// Tick brings the simulation up to date before the request is handled. A failed tick
// is logged and the request still proceeds.
func Tick(s TickPerformer, now func() time.Time, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			at := now()
			if s.ShouldTick(at) {
				if _, err := s.PerformTick(r.Context(), at); err != nil {
					log.Error("tick on request", zap.Error(err))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
