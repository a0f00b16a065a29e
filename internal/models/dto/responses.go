package dto

import "github.com/hongminglow/airfreight/internal/models"

// NearbyAirport is one entry of GET /airports/near/{id}.
type NearbyAirport struct {
	models.Airport
	Distance float64 `json:"distance_m"`
}

// Health is the body of GET /health.
type Health struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	LastTick string `json:"last_tick,omitempty"`
}
