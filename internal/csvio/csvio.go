// Package csvio reads and writes the flat CSV interchange format: one row
// per planet, system columns repeated on every row.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/starsys/internal/models"
)

// Header is the column order written by Write.
var Header = []string{
	"system_name",
	"spectral_type",
	"distance_ly",
	"planet_name",
	"mass",
	"radius",
	"orbit_distance",
}

// Older files name the spectral column star_type.
var columnAliases = map[string]string{
	"star_type": "spectral_type",
}

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("csvio: missing column")

// Read parses systems from r. Rows are grouped by system_name in first-seen
// order; a row with an empty planet_name only declares the system. Numeric
// cells that cannot be parsed become 0.
func Read(r io.Reader) ([]models.StarSystem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvio: read header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols["system_name"]; !ok {
		return nil, fmt.Errorf("%w: system_name", ErrMissingColumn)
	}

	var systems []models.StarSystem
	index := make(map[string]int)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csvio: line %d: %w", line, err)
		}

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		name := cell("system_name")
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			sys := models.NewStarSystem(name)
			if st := cell("spectral_type"); st != "" {
				sys.SpectralType = st
			}
			sys.DistanceLY = models.SafeFloat(cell("distance_ly"), 1)
			i = len(systems)
			index[name] = i
			systems = append(systems, sys)
		}

		if pn := cell("planet_name"); pn != "" {
			systems[i].AddPlanet(models.Planet{
				Name:          pn,
				Mass:          models.SafeFloat(cell("mass"), 1),
				Radius:        models.SafeFloat(cell("radius"), 1),
				OrbitDistance: models.SafeFloat(cell("orbit_distance"), 1),
			})
		}
	}
	return systems, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := columnAliases[h]; ok {
			h = alias
		}
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

// Write emits Header followed by one row per planet. Systems without planets
// get a single row with empty planet columns so they survive a round trip.
func Write(w io.Writer, systems []models.StarSystem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("csvio: write header: %w", err)
	}
	for _, sys := range systems {
		base := []string{sys.Name, sys.SpectralType, formatFloat(sys.DistanceLY)}
		if !sys.HasPlanets() {
			if err := cw.Write(append(base, "", "", "", "")); err != nil {
				return fmt.Errorf("csvio: write %q: %w", sys.Name, err)
			}
			continue
		}
		for _, p := range sys.Planets {
			row := append(append([]string{}, base...),
				p.Name, formatFloat(p.Mass), formatFloat(p.Radius), formatFloat(p.OrbitDistance))
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("csvio: write %q: %w", sys.Name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
