package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/middleware"
	"github.com/hongminglow/airfreight/internal/models/dto"
)

// PackageHandler owns the package endpoints.
type PackageHandler struct {
	base
}

// NewPackageHandler constructs the handler.
func NewPackageHandler(svc *game.Service, log *zap.Logger) *PackageHandler {
	return &PackageHandler{base: newBase(svc, log)}
}

// Register attaches package routes.
func (h *PackageHandler) Register(r chi.Router) {
	r.Get("/packages", h.list)
	r.Get("/packages/{id}", h.get)
	r.Get("/packages/at-airport/{airport}", h.atAirport)
	r.Get("/packages/onboard/{id}", h.onboard)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Put("/packages/{id}/load", h.load)
		r.Put("/packages/{id}/unload", h.unload)
	})
}

func (h *PackageHandler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := page(w, r)
	if !ok {
		return
	}
	pkgs, err := h.svc.Packages(r.Context(), p)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pkgs)
}

func (h *PackageHandler) get(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.svc.Package(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pkg)
}

func (h *PackageHandler) atAirport(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.svc.PackagesAtAirport(r.Context(), chi.URLParam(r, "airport"))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pkgs)
}

func (h *PackageHandler) onboard(w http.ResponseWriter, r *http.Request) {
	id, ok := tail(w, r)
	if !ok {
		return
	}
	pkgs, err := h.svc.PackagesOnboard(r.Context(), id)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pkgs)
}

func (h *PackageHandler) load(w http.ResponseWriter, r *http.Request) {
	var req dto.LoadPackageRequest
	if !decode(w, r, &req) {
		return
	}
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	pkg, err := h.svc.LoadPackage(r.Context(), chi.URLParam(r, "id"), req.Plane, user.ID)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "package loaded", pkg)
}

func (h *PackageHandler) unload(w http.ResponseWriter, r *http.Request) {
	user, ok := h.actor(w, r)
	if !ok {
		return
	}
	pkg, err := h.svc.UnloadPackage(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "package unloaded", pkg)
}
