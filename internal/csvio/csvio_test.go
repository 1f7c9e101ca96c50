package csvio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/starsys/internal/models"
)

func TestRead(t *testing.T) {
	in := `system_name,star_type,distance_ly,planet_name,mass,radius,orbit_distance
Sol,G2V,0,Earth,1,1,1
Sol,G2V,0,Mars,0.107,0.53,1.52
TRAPPIST-1,M8V,40.7,TRAPPIST-1 b,1.02,1.12,0.011
Lonely,K1,,,,,
Sol,ignored,99,Venus,0.815,0.95,0.72
Broken,,abc,X,heavy,,
`
	got, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []models.StarSystem{
		{Name: "Sol", SpectralType: "G2V", DistanceLY: 0, Planets: []models.Planet{
			{Name: "Earth", Mass: 1, Radius: 1, OrbitDistance: 1},
			{Name: "Mars", Mass: 0.107, Radius: 0.53, OrbitDistance: 1.52},
			{Name: "Venus", Mass: 0.815, Radius: 0.95, OrbitDistance: 0.72},
		}},
		{Name: "TRAPPIST-1", SpectralType: "M8V", DistanceLY: 40.7, Planets: []models.Planet{
			{Name: "TRAPPIST-1 b", Mass: 1.02, Radius: 1.12, OrbitDistance: 0.011},
		}},
		{Name: "Lonely", SpectralType: "K1"},
		{Name: "Broken", SpectralType: models.UnknownSpectralType, Planets: []models.Planet{{Name: "X"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEmptyInput(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d systems from empty input", len(got))
	}
}

func TestReadMissingSystemColumn(t *testing.T) {
	_, err := Read(strings.NewReader("name,mass\nSol,1\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestReadMalformedQuote(t *testing.T) {
	_, err := Read(strings.NewReader("system_name,planet_name\n\"Sol,Earth\n"))
	if err == nil {
		t.Error("expected parse error for unterminated quote")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	systems := []models.StarSystem{
		{Name: "Sol", SpectralType: "G2V", Planets: []models.Planet{
			{Name: "Earth", Mass: 1, Radius: 1, OrbitDistance: 365.25},
		}},
		{Name: "Empty, Inc.", SpectralType: models.UnknownSpectralType, DistanceLY: 12.5},
	}
	var buf bytes.Buffer
	if err := Write(&buf, systems); err != nil {
		t.Fatalf("Write: %v", err)
	}

	wantText := "system_name,spectral_type,distance_ly,planet_name,mass,radius,orbit_distance\n" +
		"Sol,G2V,0,Earth,1,1,365.25\n" +
		"\"Empty, Inc.\",Unknown,12.5,,,,\n"
	if diff := cmp.Diff(wantText, buf.String()); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}

	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(systems, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
