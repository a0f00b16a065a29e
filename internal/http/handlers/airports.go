package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/http/respond"
	"github.com/hongminglow/airfreight/internal/models/dto"
)

// CatalogHandler serves the read-only airports and plane models.
type CatalogHandler struct {
	base
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *game.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{base: newBase(svc, log)}
}

// Register attaches catalog routes.
func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/airports", h.listAirports)
	r.Get("/airports/{id}", h.getAirport)
	r.Get("/airports/near/{id}", h.nearby)
	r.Get("/plane-models", h.listModels)
	r.Get("/plane-models/{id}", h.getModel)
}

func (h *CatalogHandler) listAirports(w http.ResponseWriter, r *http.Request) {
	p, ok := page(w, r)
	if !ok {
		return
	}
	airports, err := h.svc.Airports(r.Context(), p)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", airports)
}

func (h *CatalogHandler) getAirport(w http.ResponseWriter, r *http.Request) {
	airport, err := h.svc.Airport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", airport)
}

func (h *CatalogHandler) nearby(w http.ResponseWriter, r *http.Request) {
	p, ok := page(w, r)
	if !ok {
		return
	}
	var radius float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v > 0) {
			respond.Error(w, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		radius = v
	}
	neighbors, err := h.svc.NearbyAirports(r.Context(), chi.URLParam(r, "id"), radius, p)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	out := make([]dto.NearbyAirport, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, dto.NearbyAirport{Airport: n.Airport, Distance: n.Distance})
	}
	respond.JSON(w, http.StatusOK, "ok", out)
}

func (h *CatalogHandler) listModels(w http.ResponseWriter, r *http.Request) {
	p, ok := page(w, r)
	if !ok {
		return
	}
	planeModels, err := h.svc.PlaneModels(r.Context(), p)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", planeModels)
}

func (h *CatalogHandler) getModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.svc.PlaneModel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", model)
}
