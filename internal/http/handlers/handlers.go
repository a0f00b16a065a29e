// Package handlers adapts the game service to HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/middleware"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

const maxBodyBytes = 1 << 20

// base carries what every handler needs.
type base struct {
	svc *game.Service
	log *zap.Logger
}

func newBase(svc *game.Service, log *zap.Logger) base {
	if log == nil {
		log = zap.NewNop()
	}
	return base{svc: svc, log: log.Named("http")}
}

// actor returns the authenticated caller, creating the account on first sight.
func (b base) actor(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	claims, ok := middleware.Identity(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return models.User{}, false
	}
	user, err := b.svc.EnsureUser(r.Context(), claims.Subject, claims.Name)
	if err != nil {
		respond.Fail(w, b.log, err)
		return models.User{}, false
	}
	return user, true
}

// tail reads and validates the {id} tail number path parameter.
func tail(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !game.ValidTailNumber(id) {
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("tail number %q must be 6 upper-case letters or digits", id))
		return "", false
	}
	return id, true
}

// page reads the limit and page query parameters.
func page(w http.ResponseWriter, r *http.Request) (storage.Page, bool) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), storage.DefaultLimit, 1, storage.MaxLimit)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "limit "+err.Error())
		return storage.Page{}, false
	}
	n, err := intParam(q.Get("page"), 1, 1, storage.MaxPage)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "page "+err.Error())
		return storage.Page{}, false
	}
	return storage.NewPage(limit, n), true
}

// intParam parses raw, returning def when empty. max <= 0 means unbounded.
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	if v < lo || (hi > 0 && v > hi) {
		if hi > 0 {
			return 0, fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return 0, fmt.Errorf("must be at least %d", lo)
	}
	return v, nil
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}
