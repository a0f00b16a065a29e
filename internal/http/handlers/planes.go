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

// PlaneHandler owns the fleet endpoints.
type PlaneHandler struct {
	base
}

// NewPlaneHandler constructs the handler.
func NewPlaneHandler(svc *game.Service, log *zap.Logger) *PlaneHandler {
	return &PlaneHandler{base: newBase(svc, log)}
}

// Register attaches plane routes. Mutations require a bearer token.
func (h *PlaneHandler) Register(r chi.Router) {
	r.Get("/planes", h.list)
	r.Get("/planes/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/planes", h.purchase)
		r.Put("/planes/{id}/upgrade", h.upgrade)
		r.Put("/planes/{id}/embark", h.embark)
		r.Patch("/planes/{id}/refuel", h.refuel)
		r.Patch("/planes/{id}/repair", h.repair)
		r.Delete("/planes/{id}", h.decommission)
	})
}

func (h *PlaneHandler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := page(w, r)
	if !ok {
		return
	}
	planes, err := h.svc.Planes(r.Context(), p)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", planes)
}

func (h *PlaneHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := tail(w, r)
	if !ok {
		return
	}
	plane, err := h.svc.Plane(r.Context(), id)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", plane)
}

func (h *PlaneHandler) purchase(w http.ResponseWriter, r *http.Request) {
	var req dto.PurchasePlaneRequest
	if !decode(w, r, &req) {
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	plane, err := h.svc.Purchase(r.Context(), req.TailNumber, req.Model, req.Airport, user.ID)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "plane purchased", plane)
}

// mutate runs op on the {id} plane for the caller.
func (h *PlaneHandler) mutate(w http.ResponseWriter, r *http.Request, message string, op func(tail, userID string) (models.Plane, error)) {
	id, ok := tail(w, r)
	if !ok {
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	plane, err := op(id, user.ID)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, message, plane)
}

func (h *PlaneHandler) upgrade(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "plane upgraded", func(id, userID string) (models.Plane, error) {
		return h.svc.Upgrade(r.Context(), id, userID)
	})
}

func (h *PlaneHandler) embark(w http.ResponseWriter, r *http.Request) {
	var req dto.EmbarkRequest
	if !decode(w, r, &req) {
		return
	}
	h.mutate(w, r, "plane departed", func(id, userID string) (models.Plane, error) {
		return h.svc.Embark(r.Context(), id, req.Destination, userID)
	})
}

func (h *PlaneHandler) refuel(w http.ResponseWriter, r *http.Request) {
	var req dto.RefuelRequest
	if !decode(w, r, &req) {
		return
	}
	h.mutate(w, r, "plane refuelled", func(id, userID string) (models.Plane, error) {
		return h.svc.Refuel(r.Context(), id, req.Amount, userID)
	})
}

func (h *PlaneHandler) repair(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "plane repaired", func(id, userID string) (models.Plane, error) {
		return h.svc.Repair(r.Context(), id, userID)
	})
}

func (h *PlaneHandler) decommission(w http.ResponseWriter, r *http.Request) {
	id, ok := tail(w, r)
	if !ok {
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Decommission(r.Context(), id, user.ID); err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "plane decommissioned", nil)
}
