// Package models defines the domain types for the star system catalog.
package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// UnknownSpectralType is stored when a system has no spectral classification.
const UnknownSpectralType = "Unknown"

// StarSystem is a named star with its planets. Name is globally unique.
type StarSystem struct {
	Name         string
	SpectralType string
	// DistanceLY is the distance from Earth in light-years; 0 means unknown.
	DistanceLY float64
	Planets    []Planet
}

// NewStarSystem returns a system with default spectral type and unknown distance.
func NewStarSystem(name string) StarSystem {
	return StarSystem{Name: name, SpectralType: UnknownSpectralType}
}

// AddPlanet appends p to the system, keeping insertion order.
func (s *StarSystem) AddPlanet(p Planet) {
	s.Planets = append(s.Planets, p)
}

// HasPlanets reports whether the system has at least one planet.
func (s StarSystem) HasPlanets() bool {
	return len(s.Planets) > 0
}

// PlanetCount returns the number of planets in the system.
func (s StarSystem) PlanetCount() int {
	return len(s.Planets)
}

// HasKnownDistance reports whether DistanceLY carries a real value.
func (s StarSystem) HasKnownDistance() bool {
	return s.DistanceLY > 0
}

// SpectralClass returns the upper-cased first rune of the spectral type,
// or "" when the type is empty or unknown.
func (s StarSystem) SpectralClass() string {
	st := strings.TrimSpace(s.SpectralType)
	if st == "" || st == UnknownSpectralType {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(st)
	return strings.ToUpper(string(r))
}

// SystemRecord is the serialized form of a StarSystem.
type SystemRecord struct {
	Name         string         `json:"name"`
	SpectralType string         `json:"spectral_type"`
	DistanceLY   float64        `json:"distance_ly"`
	PlanetCount  int            `json:"planet_count"`
	Planets      []PlanetRecord `json:"planets"`
}

// Record returns the structured record form of the system.
func (s StarSystem) Record() SystemRecord {
	planets := make([]PlanetRecord, len(s.Planets))
	for i, p := range s.Planets {
		planets[i] = p.Record()
	}
	return SystemRecord{
		Name:         s.Name,
		SpectralType: s.SpectralType,
		DistanceLY:   s.DistanceLY,
		PlanetCount:  s.PlanetCount(),
		Planets:      planets,
	}
}

// Records converts a slice of systems to their record form.
func Records(systems []StarSystem) []SystemRecord {
	out := make([]SystemRecord, len(systems))
	for i, s := range systems {
		out[i] = s.Record()
	}
	return out
}

func (s StarSystem) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Star System: %s\n", s.Name)
	fmt.Fprintf(&b, "  Spectral Type: %s\n", s.SpectralType)
	fmt.Fprintf(&b, "  Distance: %.2f ly\n", s.DistanceLY)
	fmt.Fprintf(&b, "  Planets (%d):\n", s.PlanetCount())
	if len(s.Planets) == 0 {
		b.WriteString("  No planets")
		return b.String()
	}
	for i, p := range s.Planets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  " + p.String())
	}
	return b.String()
}
