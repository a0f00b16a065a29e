package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/auth"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if claims, found := Identity(r.Context()); found {
		w.Header().Set("X-User", claims.Subject)
	}
	w.WriteHeader(http.StatusTeapot)
})

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://Game.example"})(ok)

	req := httptest.NewRequest(http.MethodGet, "/planes", nil)
	req.Header.Set("Origin", "https://game.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://game.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/planes", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/planes", nil)
	req.Header.Set("Origin", "https://game.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSWildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://any.example")
	rec := httptest.NewRecorder()
	CORS([]string{"*"})(ok).ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("s3cret", "airfreight", time.Hour)
	raw, err := tokens.Generate("alice", "Alice")
	require.NoError(t, err)
	h := Authenticate(tokens)(ok)

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{"anonymous", "", http.StatusTeapot, ""},
		{"valid", "Bearer " + raw, http.StatusTeapot, "alice"},
		{"wrong scheme", "Basic " + raw, http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, rec.Header().Get("X-User"))
		})
	}
}

func TestRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/planes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/planes", nil)
	req = req.WithContext(WithIdentity(req.Context(), auth.Claims{Name: "Alice"}))
	rec = httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

type fakeScheduler struct {
	due   bool
	calls int
	err   error
}

func (f *fakeScheduler) ShouldTick(time.Time) bool { return f.due }

func (f *fakeScheduler) PerformTick(context.Context, time.Time) (int, error) {
	f.calls++
	return 1, f.err
}

func TestTick(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	idle := &fakeScheduler{}
	rec := httptest.NewRecorder()
	Tick(idle, now, zap.NewNop())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, idle.calls)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	failing := &fakeScheduler{due: true, err: errors.New("store down")}
	rec = httptest.NewRecorder()
	Tick(failing, now, zap.NewNop())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, http.StatusTeapot, rec.Code, "a failed tick does not fail the request")
}

func TestLoggingKeepsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Logging(zap.NewNop())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
