package models

import "fmt"

// Classification is the physical class of a planet derived from its mass and radius.
type Classification string

// Planet classes, in the order they are tested by Classify.
const (
	DwarfPlanet Classification = "Dwarf Planet"
	Terrestrial Classification = "Terrestrial"
	SuperEarth  Classification = "Super-Earth"
	GasGiant    Classification = "Gas Giant"
)

// Classification thresholds in Earth masses and Earth radii.
const (
	dwarfMaxMass       = 0.1
	terrestrialMaxMass = 2.0
	terrestrialMaxRad  = 1.5
	superEarthMaxMass  = 10.0
)

// Classifications lists every class in priority order.
var Classifications = []Classification{DwarfPlanet, Terrestrial, SuperEarth, GasGiant}

// Classify returns the class for the given mass (Earth masses) and radius (Earth radii).
// It never fails: zero or negative masses fall into DwarfPlanet.
func Classify(mass, radius float64) Classification {
	switch {
	case mass < dwarfMaxMass:
		return DwarfPlanet
	case mass < terrestrialMaxMass && radius < terrestrialMaxRad:
		return Terrestrial
	case mass < superEarthMaxMass:
		return SuperEarth
	default:
		return GasGiant
	}
}

// Planet is a body orbiting a StarSystem. It has no identity outside its parent.
type Planet struct {
	Name   string
	Mass   float64 // Earth masses
	Radius float64 // Earth radii
	// OrbitDistance is carried as-is from the source. The archive fills it
	// with the orbital period in days, other sources with AU.
	OrbitDistance float64
}

// Classify returns the planet's classification. It is computed on demand and never stored.
func (p Planet) Classify() Classification {
	return Classify(p.Mass, p.Radius)
}

// PlanetRecord is the serialized form of a Planet.
type PlanetRecord struct {
	Name           string         `json:"name"`
	Mass           float64        `json:"mass"`
	Radius         float64        `json:"radius"`
	OrbitDistance  float64        `json:"orbit_distance"`
	Classification Classification `json:"classification"`
}

// Record returns the structured record form of the planet.
func (p Planet) Record() PlanetRecord {
	return PlanetRecord{
		Name:           p.Name,
		Mass:           p.Mass,
		Radius:         p.Radius,
		OrbitDistance:  p.OrbitDistance,
		Classification: p.Classify(),
	}
}

func (p Planet) String() string {
	return fmt.Sprintf("%s: Mass=%.2f M⊕, Radius=%.2f R⊕, Orbit=%.2f (%s)",
		p.Name, p.Mass, p.Radius, p.OrbitDistance, p.Classify())
}
