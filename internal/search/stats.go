package search

import (
	"math"

	"github.com/starford/starsys/internal/models"
)

// Stats summarises a set of systems.
type Stats struct {
	TotalSystems             int            `json:"total_systems"`
	SystemsWithPlanets       int            `json:"systems_with_planets"`
	TotalPlanets             int            `json:"total_planets"`
	AvgDistance              float64        `json:"avg_distance"`
	AvgPlanetsPerSystem      float64        `json:"avg_planets_per_system"`
	SpectralTypeDistribution map[string]int `json:"spectral_type_distribution"`
}

// GetStatistics computes catalog statistics. The distance average only
// considers systems with a known distance; the distribution is keyed by the
// upper-cased first letter of known spectral types. Averages are rounded to
// two decimals.
func GetStatistics(systems []models.StarSystem) Stats {
	st := Stats{
		TotalSystems:             len(systems),
		SpectralTypeDistribution: make(map[string]int),
	}

	var (
		distSum   float64
		distCount int
	)
	for _, sys := range systems {
		n := sys.PlanetCount()
		st.TotalPlanets += n
		if n > 0 {
			st.SystemsWithPlanets++
		}
		if sys.HasKnownDistance() {
			distSum += sys.DistanceLY
			distCount++
		}
		if class := sys.SpectralClass(); class != "" {
			st.SpectralTypeDistribution[class]++
		}
	}

	if distCount > 0 {
		st.AvgDistance = round2(distSum / float64(distCount))
	}
	if st.TotalSystems > 0 {
		st.AvgPlanetsPerSystem = round2(float64(st.TotalPlanets) / float64(st.TotalSystems))
	}
	return st
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
