package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/search"
)

// Renderer formats catalog data with a fixed set of styles.
type Renderer struct {
	styles Styles
}

// NewRenderer returns a renderer using DefaultStyles.
func NewRenderer() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// NewRendererWithStyles returns a renderer using s.
func NewRendererWithStyles(s Styles) *Renderer {
	return &Renderer{styles: s}
}

func distance(d float64) string {
	if d <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.2f ly", d)
}

func systemsTable(title string, systems []models.StarSystem) *Table {
	t := NewTable(title, "Name", "Type", "Distance", "Planets")
	for _, s := range systems {
		t.AddRow(s.Name, s.SpectralType, distance(s.DistanceLY), strconv.Itoa(s.PlanetCount()))
	}
	return t
}

// SystemList renders the first systems of a catalog holding total systems.
func (r *Renderer) SystemList(systems []models.StarSystem, total int) string {
	if total == 0 {
		return r.Warning("No star systems in database. Run 'sync' first.")
	}
	title := fmt.Sprintf("Star Systems (%d of %d)", len(systems), total)
	return systemsTable(title, systems).View(r.styles)
}

// SearchResults renders matching systems followed by their planets.
func (r *Renderer) SearchResults(systems []models.StarSystem) string {
	if len(systems) == 0 {
		return r.Warning("No systems match the search criteria.")
	}
	var sb strings.Builder
	sb.WriteString(systemsTable(fmt.Sprintf("Found %d matching systems", len(systems)), systems).View(r.styles))

	planets := NewTable("", "System", "Planet", "Class")
	for _, s := range systems {
		for _, p := range s.Planets {
			planets.AddRow(s.Name, p.Name, string(p.Classify()))
		}
	}
	if view := planets.View(r.styles); view != "" {
		sb.WriteString("\n")
		sb.WriteString(view)
	}
	return sb.String()
}

// System renders one system with its planets.
func (r *Renderer) System(s models.StarSystem) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Title.Render("Star System: " + s.Name))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Spectral Type: %s\n", s.SpectralType)
	fmt.Fprintf(&sb, "  Distance: %s\n", distance(s.DistanceLY))
	fmt.Fprintf(&sb, "  Planets: %d\n", s.PlanetCount())
	if !s.HasPlanets() {
		return sb.String()
	}
	sb.WriteString("\n")
	sb.WriteString(planetTable(s.Planets).View(r.styles))
	return sb.String()
}

func planetTable(planets []models.Planet) *Table {
	t := NewTable("", "Planet", "Mass (M⊕)", "Radius (R⊕)", "Orbit", "Class")
	for _, p := range planets {
		t.AddRow(p.Name,
			strconv.FormatFloat(p.Mass, 'f', 2, 64),
			strconv.FormatFloat(p.Radius, 'f', 2, 64),
			strconv.FormatFloat(p.OrbitDistance, 'f', 2, 64),
			string(p.Classify()))
	}
	return t
}

// Stats renders catalog statistics. Spectral classes are listed alphabetically.
func (r *Renderer) Stats(st search.Stats) string {
	t := NewTable("Database Statistics", "Metric", "Value")
	t.AddRow("Total Systems", strconv.Itoa(st.TotalSystems))
	t.AddRow("Systems with Planets", strconv.Itoa(st.SystemsWithPlanets))
	t.AddRow("Total Planets", strconv.Itoa(st.TotalPlanets))
	t.AddRow("Average Distance", fmt.Sprintf("%.2f ly", st.AvgDistance))
	t.AddRow("Average Planets per System", fmt.Sprintf("%.2f", st.AvgPlanetsPerSystem))

	var sb strings.Builder
	sb.WriteString(t.View(r.styles))
	if len(st.SpectralTypeDistribution) == 0 {
		return sb.String()
	}

	classes := make([]string, 0, len(st.SpectralTypeDistribution))
	for c := range st.SpectralTypeDistribution {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	dist := NewTable("", "Spectral Class", "Systems")
	for _, c := range classes {
		dist.AddRow(c, strconv.Itoa(st.SpectralTypeDistribution[c]))
	}
	sb.WriteString("\n")
	sb.WriteString(dist.View(r.styles))
	return sb.String()
}

// Planets renders planet search results.
func (r *Renderer) Planets(matches []search.PlanetMatch) string {
	if len(matches) == 0 {
		return r.Warning("No matching planets found.")
	}
	t := NewTable(fmt.Sprintf("Found %d planets", len(matches)),
		"System", "Planet", "Mass (M⊕)", "Radius (R⊕)", "Class")
	for _, m := range matches {
		t.AddRow(m.System.Name, m.Planet.Name,
			strconv.FormatFloat(m.Planet.Mass, 'f', 2, 64),
			strconv.FormatFloat(m.Planet.Radius, 'f', 2, 64),
			string(m.Planet.Classify()))
	}
	return t.View(r.styles)
}

// Success renders a confirmation line.
func (r *Renderer) Success(msg string) string {
	return r.styles.Success.Render("✓ "+msg) + "\n"
}

// Warning renders a warning line.
func (r *Renderer) Warning(msg string) string {
	return r.styles.Warning.Render("⚠ "+msg) + "\n"
}

// Error renders an error line.
func (r *Renderer) Error(msg string) string {
	return r.styles.Error.Render("✗ "+msg) + "\n"
}
