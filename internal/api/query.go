package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/models"
)

// systemsParams holds the raw query string of GET /api/systems.
type systemsParams struct {
	Distance     string
	SpectralType string
	HasPlanets   string
	MinPlanets   string
	Name         string
	Limit        string
}

func (p systemsParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Distance, is.Float),
		validation.Field(&p.HasPlanets, validation.In("true", "false")),
		validation.Field(&p.MinPlanets, is.Digit),
		validation.Field(&p.Limit, is.Digit),
	)
}

func parseSystemsQuery(v url.Values) (catalog.Query, error) {
	p := systemsParams{
		Distance:     strings.TrimSpace(v.Get("distance")),
		SpectralType: v.Get("spectral_type"),
		HasPlanets:   strings.ToLower(strings.TrimSpace(v.Get("has_planets"))),
		MinPlanets:   strings.TrimSpace(v.Get("min_planets")),
		Name:         strings.TrimSpace(v.Get("name")),
		Limit:        strings.TrimSpace(v.Get("limit")),
	}
	if err := p.Validate(); err != nil {
		return catalog.Query{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	var q catalog.Query
	q.Name = p.Name
	if p.Distance != "" {
		d, _ := strconv.ParseFloat(p.Distance, 64)
		q.MaxDistance = &d
	}
	if p.SpectralType != "" {
		q.SpectralTypes = search.SplitClasses(p.SpectralType)
	}
	if p.HasPlanets != "" {
		b := p.HasPlanets == "true"
		q.HasPlanets = &b
	}
	if p.MinPlanets != "" {
		n, err := strconv.Atoi(p.MinPlanets)
		if err != nil {
			return catalog.Query{}, fmt.Errorf("%w: min_planets: %v", apperr.ErrInvalidInput, err)
		}
		q.MinPlanets = &n
	}
	if p.Limit != "" {
		n, err := strconv.Atoi(p.Limit)
		if err != nil {
			return catalog.Query{}, fmt.Errorf("%w: limit: %v", apperr.ErrInvalidInput, err)
		}
		q.Limit = n
	}
	return q, nil
}

// planetsParams holds the raw query string of GET /api/planets.
type planetsParams struct {
	Type    string
	MinMass string
}

func (p planetsParams) Validate() error {
	classes := make([]any, 0, len(models.Classifications))
	for _, c := range models.Classifications {
		classes = append(classes, strings.ToLower(string(c)))
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.By(func(v any) error {
			return validation.In(classes...).Validate(strings.ToLower(v.(string)))
		})),
		validation.Field(&p.MinMass, is.Float),
	)
}

func parsePlanetsQuery(v url.Values) (catalog.PlanetQuery, error) {
	p := planetsParams{
		Type:    strings.TrimSpace(v.Get("type")),
		MinMass: strings.TrimSpace(v.Get("min_mass")),
	}
	if err := p.Validate(); err != nil {
		return catalog.PlanetQuery{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	q := catalog.PlanetQuery{Classification: p.Type}
	if p.MinMass != "" {
		m, _ := strconv.ParseFloat(p.MinMass, 64)
		q.MinMass = &m
	}
	return q, nil
}
