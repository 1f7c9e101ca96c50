package archive

import (
	"fmt"
	"strings"

	"github.com/starford/starsys/internal/models"
)

// UnknownHost names the system for rows without a hostname.
const UnknownHost = "Unknown System"

// Row is one record of the archive's Planetary Systems table. Values are
// kept loosely typed; the archive emits nulls and occasionally strings for
// numeric columns.
type Row map[string]any

func (r Row) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// ParseRows groups rows by host in first-seen order. The first row of each
// host fixes its spectral type and distance; every row with a planet name
// contributes one planet.
func ParseRows(rows []Row) []models.StarSystem {
	var systems []models.StarSystem
	index := make(map[string]int)

	for _, row := range rows {
		host := row.str("hostname")
		if host == "" {
			host = UnknownHost
		}

		i, ok := index[host]
		if !ok {
			i = len(systems)
			index[host] = i
			systems = append(systems, newSystem(host, row))
		}

		if p, ok := newPlanet(row); ok {
			systems[i].AddPlanet(p)
		}
	}
	return systems
}

func newSystem(host string, row Row) models.StarSystem {
	sys := models.NewStarSystem(host)
	if st := row.str("st_spectype"); st != "" {
		sys.SpectralType = st
	}
	sys.DistanceLY = models.SafeFloat(row["sy_dist"], models.ParsecToLightYear)
	return sys
}

func newPlanet(row Row) (models.Planet, bool) {
	name := row.str("pl_name")
	if name == "" {
		return models.Planet{}, false
	}
	return models.Planet{
		Name:          name,
		Mass:          models.SafeFloat(row["pl_bmassj"], models.JupiterMassToEarth),
		Radius:        models.SafeFloat(row["pl_radj"], models.JupiterRadiusToEarth),
		OrbitDistance: models.SafeFloat(row["pl_orbper"], 1),
	}, true
}
