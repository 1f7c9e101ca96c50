package api

import (
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/search"
)

// SystemRecord is a star system in API responses (aliased from the domain layer).
type SystemRecord = models.SystemRecord

// PlanetRecord is a planet in API responses (aliased from the domain layer).
type PlanetRecord = models.PlanetRecord

// StatsResponse is the catalog statistics payload.
type StatsResponse = search.Stats

// SyncStatusResponse describes the latest archive sync.
type SyncStatusResponse = catalog.SyncStatus

// PlanetResult is one hit of a planet search.
type PlanetResult struct {
	System string       `json:"system" example:"Kepler-22" validate:"required"`
	Planet PlanetRecord `json:"planet" validate:"required"`
}

// ImportResponse is returned after a CSV import.
type ImportResponse struct {
	Saved  int `json:"saved" example:"42" validate:"required"`
	Failed int `json:"failed" example:"0" validate:"required"`
}

// PurgeResponse is returned after the catalog was emptied.
type PurgeResponse struct {
	Deleted int `json:"deleted" example:"42" validate:"required"`
}

// HealthResponse is the readiness probe payload.
type HealthResponse struct {
	Status       string `json:"status" example:"ok" validate:"required"`
	Database     string `json:"database,omitempty" example:"connected"`
	SystemsCount *int   `json:"systems_count,omitempty" example:"4523"`
}

func planetResults(matches []search.PlanetMatch) []PlanetResult {
	out := make([]PlanetResult, len(matches))
	for i, m := range matches {
		out[i] = PlanetResult{System: m.System.Name, Planet: m.Planet.Record()}
	}
	return out
}
