package console

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/starford/starsys/internal/models"
	"github.com/starford/starsys/internal/search"
)

func sample() []models.StarSystem {
	return []models.StarSystem{
		{
			Name: "Kepler-22", SpectralType: "G5V", DistanceLY: 620,
			Planets: []models.Planet{{Name: "Kepler-22 b", Mass: 36, Radius: 2.4, OrbitDistance: 289.9}},
		},
		{Name: "Lonely", SpectralType: models.UnknownSpectralType},
	}
}

func TestTableView(t *testing.T) {
	table := NewTable("Test Table", "Col1", "Col2")
	table.AddRow("Row1Col1", "Row1Col2")
	table.AddRow("short")

	view := table.View(DefaultStyles())
	t.Logf("View:\n%s", view)

	assert.Contains(t, view, "Test Table")
	assert.Contains(t, view, "Row1Col1")
	assert.Contains(t, view, "short")

	var widths []int
	for _, line := range strings.Split(strings.TrimRight(view, "\n"), "\n") {
		if strings.Contains(line, "|") {
			widths = append(widths, lipgloss.Width(line))
		}
	}
	assert.Len(t, widths, 3)
	for _, w := range widths[1:] {
		assert.Equal(t, widths[0], w, "rows should be aligned")
	}
}

func TestEmptyTable(t *testing.T) {
	assert.Empty(t, NewTable("x", "a").View(DefaultStyles()))
}

func TestSystemList(t *testing.T) {
	r := NewRenderer()
	out := r.SystemList(sample()[:1], 2)
	assert.Contains(t, out, "Star Systems (1 of 2)")
	assert.Contains(t, out, "620.00 ly")
	assert.NotContains(t, out, "Lonely")

	assert.Contains(t, r.SystemList(nil, 0), "Run 'sync' first")
}

func TestSearchResults(t *testing.T) {
	r := NewRenderer()
	out := r.SearchResults(sample())
	assert.Contains(t, out, "Found 2 matching systems")
	assert.Contains(t, out, "Kepler-22 b")
	assert.Contains(t, out, string(models.GasGiant))
	assert.Contains(t, out, "unknown")

	assert.Contains(t, r.SearchResults(nil), "No systems match")
}

func TestSystem(t *testing.T) {
	r := NewRenderer()
	out := r.System(sample()[0])
	assert.Contains(t, out, "Star System: Kepler-22")
	assert.Contains(t, out, "Spectral Type: G5V")
	assert.Contains(t, out, "289.90")

	bare := r.System(sample()[1])
	assert.Contains(t, bare, "Planets: 0")
	assert.NotContains(t, bare, "Class")
}

func TestStats(t *testing.T) {
	out := NewRenderer().Stats(search.GetStatistics(sample()))
	assert.Contains(t, out, "Total Systems")
	assert.Contains(t, out, "620.00 ly")
	assert.Contains(t, out, "Spectral Class")

	empty := NewRenderer().Stats(search.GetStatistics(nil))
	assert.NotContains(t, empty, "Spectral Class")
}

func TestPlanets(t *testing.T) {
	r := NewRenderer()
	out := r.Planets(search.PlanetsAboveMass(sample(), 1))
	assert.Contains(t, out, "Found 1 planets")
	assert.Contains(t, out, "36.00")
	assert.Contains(t, r.Planets(nil), "No matching planets")
}
