// Package search holds the pure filtering, lookup and statistics functions
// run over in-memory star systems. Nothing here touches storage and no
// function mutates its input.
package search

import (
	"slices"
	"strings"

	"github.com/starford/starsys/internal/models"
)

// Criteria narrows a list of systems. A nil field is not applied.
type Criteria struct {
	MaxDistance   *float64
	SpectralTypes []string
	HasPlanets    *bool
	MinPlanets    *int
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c.MaxDistance == nil && len(c.SpectralTypes) == 0 &&
		c.HasPlanets == nil && c.MinPlanets == nil
}

// FilterSystems applies the criteria in order: distance, spectral class,
// planet presence, minimum planet count. The result keeps input order.
// A non-empty SpectralTypes keeps systems whose class letter is one of the
// upper-cased entries; "K1III" or " " match nothing.
func FilterSystems(systems []models.StarSystem, c Criteria) []models.StarSystem {
	classes := normalizeClasses(c.SpectralTypes)

	out := make([]models.StarSystem, 0, len(systems))
	for _, sys := range systems {
		if c.MaxDistance != nil && !withinDistance(sys, *c.MaxDistance) {
			continue
		}
		if len(classes) > 0 && !matchesClass(sys, classes) {
			continue
		}
		if c.HasPlanets != nil && sys.HasPlanets() != *c.HasPlanets {
			continue
		}
		if c.MinPlanets != nil && sys.PlanetCount() < *c.MinPlanets {
			continue
		}
		out = append(out, sys)
	}
	return out
}

// Unknown distance (0) never matches.
func withinDistance(sys models.StarSystem, max float64) bool {
	return sys.DistanceLY > 0 && sys.DistanceLY <= max
}

func matchesClass(sys models.StarSystem, classes []string) bool {
	class := sys.SpectralClass()
	if class == "" {
		return false
	}
	return slices.Contains(classes, class)
}

func normalizeClasses(types []string) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = strings.ToUpper(t)
	}
	return out
}

// SplitClasses parses a comma-separated class list such as "G, k".
// Entries are trimmed and blanks dropped.
func SplitClasses(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SearchByName returns systems whose name contains query, ignoring case.
// An empty query matches every system.
func SearchByName(systems []models.StarSystem, query string) []models.StarSystem {
	q := strings.ToLower(query)
	out := make([]models.StarSystem, 0, len(systems))
	for _, sys := range systems {
		if strings.Contains(strings.ToLower(sys.Name), q) {
			out = append(out, sys)
		}
	}
	return out
}
