package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		radius float64
		want   Classification
	}{
		{"pluto", 0.002, 0.18, DwarfPlanet},
		{"just below dwarf threshold", 0.099, 1.0, DwarfPlanet},
		{"at dwarf threshold", 0.1, 1.0, Terrestrial},
		{"mars", 0.107, 0.53, Terrestrial},
		{"earth", 1.0, 1.0, Terrestrial},
		{"terrestrial edge", 1.99, 1.49, Terrestrial},
		{"mass at terrestrial limit", 2.0, 1.0, SuperEarth},
		{"radius at terrestrial limit", 1.0, 1.5, SuperEarth},
		{"large terrestrial", 9.9, 2.0, SuperEarth},
		{"at super-earth limit", 10.0, 2.0, GasGiant},
		{"jupiter", 317.8, 11.2, GasGiant},
		{"zero", 0, 0, DwarfPlanet},
		{"negative", -1, -1, DwarfPlanet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.mass, tt.radius); got != tt.want {
				t.Errorf("Classify(%v, %v) = %q, want %q", tt.mass, tt.radius, got, tt.want)
			}
			p := Planet{Name: tt.name, Mass: tt.mass, Radius: tt.radius}
			if got := p.Classify(); got != tt.want {
				t.Errorf("Planet.Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStarSystemDefaults(t *testing.T) {
	s := NewStarSystem("Sol")
	if s.SpectralType != UnknownSpectralType {
		t.Errorf("spectral type = %q, want %q", s.SpectralType, UnknownSpectralType)
	}
	if s.DistanceLY != 0 || s.HasKnownDistance() {
		t.Errorf("distance = %v, want unknown", s.DistanceLY)
	}
	if s.HasPlanets() || s.PlanetCount() != 0 {
		t.Error("new system should have no planets")
	}
}

func TestAddPlanetKeepsOrder(t *testing.T) {
	s := NewStarSystem("Sol")
	s.AddPlanet(Planet{Name: "Mercury", Mass: 0.055, Radius: 0.38})
	s.AddPlanet(Planet{Name: "Venus", Mass: 0.815, Radius: 0.95})
	s.AddPlanet(Planet{Name: "Earth", Mass: 1, Radius: 1})

	if s.PlanetCount() != 3 || !s.HasPlanets() {
		t.Fatalf("planet count = %d", s.PlanetCount())
	}
	for i, want := range []string{"Mercury", "Venus", "Earth"} {
		if s.Planets[i].Name != want {
			t.Errorf("planet[%d] = %q, want %q", i, s.Planets[i].Name, want)
		}
	}
}

func TestSpectralClass(t *testing.T) {
	tests := map[string]string{
		"G2V":      "G",
		"k5v":      "K",
		"  M4.5V":  "M",
		"Unknown":  "",
		"":         "",
		"   ":      "",
		"éA0":      "É",
		"\xffG":    "\uFFFD",
	}
	for in, want := range tests {
		s := StarSystem{Name: "x", SpectralType: in}
		if got := s.SpectralClass(); got != want {
			t.Errorf("SpectralClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordShape(t *testing.T) {
	s := StarSystem{Name: "Kepler-186", SpectralType: "M1V", DistanceLY: 579.2}
	s.AddPlanet(Planet{Name: "Kepler-186 f", Mass: 1.71, Radius: 1.17, OrbitDistance: 129.9})

	data, err := json.Marshal(s.Record())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"name", "spectral_type", "distance_ly", "planet_count", "planets"} {
		if _, ok := got[key]; !ok {
			t.Errorf("system record missing %q: %s", key, data)
		}
	}
	if got["planet_count"].(float64) != 1 {
		t.Errorf("planet_count = %v", got["planet_count"])
	}
	planet := got["planets"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "mass", "radius", "orbit_distance", "classification"} {
		if _, ok := planet[key]; !ok {
			t.Errorf("planet record missing %q", key)
		}
	}
	if planet["classification"] != string(Terrestrial) {
		t.Errorf("classification = %v", planet["classification"])
	}
}

func TestRecordEmptyPlanetsIsArray(t *testing.T) {
	data, _ := json.Marshal(NewStarSystem("Lonely").Record())
	if !strings.Contains(string(data), `"planets":[]`) {
		t.Errorf("expected empty planets array, got %s", data)
	}
}

func TestStringRendering(t *testing.T) {
	s := StarSystem{Name: "Sol", SpectralType: "G2V", DistanceLY: 0}
	if !strings.Contains(s.String(), "No planets") {
		t.Errorf("empty system rendering = %q", s.String())
	}
	s.AddPlanet(Planet{Name: "Mars", Mass: 0.107, Radius: 0.53, OrbitDistance: 1.52})
	out := s.String()
	if !strings.Contains(out, "Mars") || !strings.Contains(out, "Terrestrial") {
		t.Errorf("rendering = %q", out)
	}
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		mult float64
		want float64
	}{
		{"nil", nil, 1, 0},
		{"empty string", "", 2, 0},
		{"blank string", "  ", 2, 0},
		{"garbage", "n/a", 1, 0},
		{"float", 1.5, 2, 3},
		{"numeric string", "2.5", 1, 2.5},
		{"int", 3, 1, 3},
		{"json number", json.Number("4"), 0.5, 2},
		{"bad json number", json.Number("x"), 1, 0},
		{"bool", true, 1, 0},
		{"nan string", "NaN", 1, 0},
		{"parsec", 1.0, ParsecToLightYear, ParsecToLightYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFloat(tt.in, tt.mult); got != tt.want {
				t.Errorf("SafeFloat(%v, %v) = %v, want %v", tt.in, tt.mult, got, tt.want)
			}
		})
	}
}
