package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/middleware"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/models/dto"
)

// UserHandler owns account endpoints.
type UserHandler struct {
	base
}

// NewUserHandler constructs the handler.
func NewUserHandler(svc *game.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{base: newBase(svc, log)}
}

// Register attaches user routes.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", h.me)
		r.Put("/users/{id}", h.rename)
		r.Delete("/users/{id}", h.remove)
	})
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

// self authorizes a change to the {id} account.
func (h *UserHandler) self(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := h.actor(w, r)
	if !ok {
		return models.User{}, false
	}
	if chi.URLParam(r, "id") != user.ID {
		respond.Error(w, http.StatusForbidden, "you can only modify your own account")
		return models.User{}, false
	}
	return user, true
}

func (h *UserHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, ok := h.self(w, r)
	if !ok {
		return
	}
	updated, err := h.svc.RenameUser(r.Context(), user.ID, req.Name)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", updated)
}

func (h *UserHandler) remove(w http.ResponseWriter, r *http.Request) {
	user, ok := h.self(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), user.ID); err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user deleted", nil)
}
