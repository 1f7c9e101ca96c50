package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "starsys",
		Usage:   "Catalog of star systems and their exoplanets, synced from the NASA Exoplanet Archive",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite database (overrides sqlite.path)",
				Sources: cli.EnvVars("STAR_SYSTEMS_DB"),
			},
			&cli.StringFlag{
				Name:    "admin-secret",
				Usage:   "Shared secret for admin endpoints",
				Sources: cli.EnvVars("STARADMIN"),
			},
			&cli.BoolFlag{
				Name:    "render",
				Usage:   "Store the database under /tmp for ephemeral deployments",
				Sources: cli.EnvVars("RENDER"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			initCommand(),
			syncCommand(),
			listCommand(),
			searchCommand(),
			infoCommand(),
			statsCommand(),
			planetsCommand(),
			importCommand(),
			exportCommand(),
			purgeCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
