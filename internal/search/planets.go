package search

import (
	"strings"

	"github.com/starford/starsys/internal/models"
)

// PlanetMatch pairs a planet with the system it orbits.
type PlanetMatch struct {
	System models.StarSystem
	Planet models.Planet
}

// PlanetsAboveMass returns planets heavier than minMass (strictly), in
// system then planet order.
func PlanetsAboveMass(systems []models.StarSystem, minMass float64) []PlanetMatch {
	return collectPlanets(systems, func(p models.Planet) bool {
		return p.Mass > minMass
	})
}

// PlanetsByClassification returns planets whose classification equals class,
// compared case-insensitively ("gas giant" matches models.GasGiant).
func PlanetsByClassification(systems []models.StarSystem, class string) []PlanetMatch {
	want := strings.TrimSpace(class)
	return collectPlanets(systems, func(p models.Planet) bool {
		return strings.EqualFold(string(p.Classify()), want)
	})
}

func collectPlanets(systems []models.StarSystem, keep func(models.Planet) bool) []PlanetMatch {
	var out []PlanetMatch
	for _, sys := range systems {
		for _, p := range sys.Planets {
			if keep(p) {
				out = append(out, PlanetMatch{System: sys, Planet: p})
			}
		}
	}
	return out
}
