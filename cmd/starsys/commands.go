package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/starsys/internal"
	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/catalog"
	"github.com/starford/starsys/internal/console"
	"github.com/starford/starsys/internal/search"
	pkgconfig "github.com/starford/starsys/pkg/config"
)

// loadConfig reads the config file (if present) and applies flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyOverrides(cmd.String("db"), cmd.String("admin-secret"), cmd.Bool("render"))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withCatalog opens the catalog for a one-shot command. Logs go to stderr
// so stdout carries only command output.
func withCatalog(ctx context.Context, cmd *cli.Command, fn func(*catalog.Service, *console.Renderer) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	cat, err := internal.OpenCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer cat.Close()
	return fn(cat.Service, console.NewRenderer())
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the catalog to MCP clients over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the database schema",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				n, err := svc.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Print(r.Success(fmt.Sprintf("Database ready (%d systems)", n)))
				return nil
			})
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download every system from the exoplanet archive",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				report, err := svc.Sync(ctx)
				if err != nil {
					fmt.Print(r.Error("Sync failed"))
					return err
				}
				printBatch(r, report.Saved, report.Failed)
				return nil
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List star systems",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum systems to show", Value: 50},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				total, err := svc.Count(ctx)
				if err != nil {
					return err
				}
				systems, err := svc.List(ctx, catalog.Query{Limit: int(cmd.Int("limit"))})
				if err != nil {
					return err
				}
				fmt.Print(r.SystemList(systems, total))
				return nil
			})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Filter star systems",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "distance", Usage: "Maximum distance in light years"},
			&cli.StringSliceFlag{Name: "spectral-type", Usage: "Spectral class letter (repeatable)"},
			&cli.BoolFlag{Name: "has-planets", Usage: "Only systems with planets"},
			&cli.BoolFlag{Name: "no-planets", Usage: "Only systems without planets"},
			&cli.IntFlag{Name: "min-planets", Usage: "Minimum number of planets"},
			&cli.StringFlag{Name: "name", Usage: "Case-insensitive name fragment"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum systems to show"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q, err := searchQuery(cmd)
			if err != nil {
				return err
			}
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				systems, err := svc.List(ctx, q)
				if err != nil {
					return err
				}
				fmt.Print(r.SearchResults(systems))
				return nil
			})
		},
	}
}

func searchQuery(cmd *cli.Command) (catalog.Query, error) {
	var q catalog.Query
	if cmd.IsSet("distance") {
		d := cmd.Float("distance")
		q.MaxDistance = &d
	}
	for _, st := range cmd.StringSlice("spectral-type") {
		q.SpectralTypes = append(q.SpectralTypes, search.SplitClasses(st)...)
	}
	switch {
	case cmd.Bool("has-planets") && cmd.Bool("no-planets"):
		return q, errors.New("--has-planets and --no-planets are mutually exclusive")
	case cmd.Bool("has-planets"):
		v := true
		q.HasPlanets = &v
	case cmd.Bool("no-planets"):
		v := false
		q.HasPlanets = &v
	}
	if cmd.IsSet("min-planets") {
		n := int(cmd.Int("min-planets"))
		q.MinPlanets = &n
	}
	q.Name = cmd.String("name")
	q.Limit = int(cmd.Int("limit"))
	return q, nil
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show one system and its planets",
		ArgsUsage: "NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.Join(cmd.Args().Slice(), " ")
			if name == "" {
				return errors.New("system name is required")
			}
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				sys, err := svc.Get(ctx, name)
				if errors.Is(err, apperr.ErrNotFound) {
					fmt.Print(r.Warning(fmt.Sprintf("System '%s' not found", name)))
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Print(r.System(*sys))
				return nil
			})
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show catalog statistics",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				st, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Print(r.Stats(st))
				return nil
			})
		},
	}
}

func planetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "planets",
		Usage: "Find planets by mass or classification",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "min-mass", Usage: "Minimum mass in Earth masses"},
			&cli.StringFlag{Name: "type", Usage: "Classification, e.g. \"Gas Giant\""},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			q := catalog.PlanetQuery{Classification: cmd.String("type")}
			if cmd.IsSet("min-mass") {
				m := cmd.Float("min-mass")
				q.MinMass = &m
			}
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				matches, err := svc.Planets(ctx, q)
				if err != nil {
					return err
				}
				fmt.Print(r.Planets(matches))
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import systems from a CSV file",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("csv file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				res, err := svc.Import(ctx, f)
				if err != nil {
					return err
				}
				printBatch(r, res.Saved, res.Failed)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export every system to a CSV file",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New("csv file is required")
			}
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				n, err := svc.Export(ctx, f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				fmt.Print(r.Success(fmt.Sprintf("Exported %d systems to %s", n, path)))
				return nil
			})
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete every system and planet",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "Confirm deletion"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("yes") {
				return errors.New("refusing to purge without --yes")
			}
			return withCatalog(ctx, cmd, func(svc *catalog.Service, r *console.Renderer) error {
				n, err := svc.Count(ctx)
				if err != nil {
					return err
				}
				if err := svc.Purge(ctx); err != nil {
					return err
				}
				fmt.Print(r.Success(fmt.Sprintf("Deleted %d systems", n)))
				return nil
			})
		},
	}
}

func printBatch(r *console.Renderer, saved, failed int) {
	if failed > 0 {
		fmt.Print(r.Warning(fmt.Sprintf("%d saved, %d failed", saved, failed)))
		return
	}
	fmt.Print(r.Success(fmt.Sprintf("%d saved", saved)))
}
