package main

import (
	"context"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/starford/starsys/internal/catalog"
)

func parseSearch(t *testing.T, args ...string) (catalog.Query, error) {
	t.Helper()
	var (
		q   catalog.Query
		err error
	)
	cmd := &cli.Command{
		Name:  "search",
		Flags: searchCommand().Flags,
		Action: func(_ context.Context, c *cli.Command) error {
			q, err = searchQuery(c)
			return nil
		},
	}
	if runErr := cmd.Run(context.Background(), append([]string{"search"}, args...)); runErr != nil {
		t.Fatalf("run: %v", runErr)
	}
	return q, err
}

func TestSearchQueryFlags(t *testing.T) {
	q, err := parseSearch(t,
		"--distance", "50",
		"--spectral-type", "G,K",
		"--spectral-type", "M",
		"--has-planets",
		"--min-planets", "2",
		"--name", "kepler",
		"--limit", "5")
	if err != nil {
		t.Fatalf("searchQuery: %v", err)
	}
	if q.MaxDistance == nil || *q.MaxDistance != 50 {
		t.Errorf("MaxDistance = %v", q.MaxDistance)
	}
	if len(q.SpectralTypes) != 3 || q.SpectralTypes[2] != "M" {
		t.Errorf("SpectralTypes = %v", q.SpectralTypes)
	}
	if q.HasPlanets == nil || !*q.HasPlanets {
		t.Errorf("HasPlanets = %v", q.HasPlanets)
	}
	if q.MinPlanets == nil || *q.MinPlanets != 2 {
		t.Errorf("MinPlanets = %v", q.MinPlanets)
	}
	if q.Name != "kepler" || q.Limit != 5 {
		t.Errorf("Name = %q, Limit = %d", q.Name, q.Limit)
	}
}

func TestSearchQueryDefaultsLeaveCriteriaUnset(t *testing.T) {
	q, err := parseSearch(t)
	if err != nil {
		t.Fatalf("searchQuery: %v", err)
	}
	if !q.Criteria.IsZero() || q.Limit != 0 || q.Name != "" {
		t.Errorf("query = %+v", q)
	}
}

func TestSearchQueryNoPlanets(t *testing.T) {
	q, err := parseSearch(t, "--no-planets")
	if err != nil {
		t.Fatalf("searchQuery: %v", err)
	}
	if q.HasPlanets == nil || *q.HasPlanets {
		t.Errorf("HasPlanets = %v", q.HasPlanets)
	}

	if _, err := parseSearch(t, "--no-planets", "--has-planets"); err == nil {
		t.Error("conflicting planet flags should fail")
	}
}
