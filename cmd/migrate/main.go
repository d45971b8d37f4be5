// Command migrate applies or rolls back the arena's embedded database schema.
//
// Usage:
//
//	migrate [-config path] up [n]
//	migrate [-config path] down [n]
//	migrate [-config path] version
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	action, steps, err := parseArgs(flag.Args())
	if err != nil {
		logger.Fatal("invalid arguments", zap.Error(err))
	}

	m, err := postgres.NewMigrator(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	switch action {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current")
	} else if err != nil {
		logger.Fatal("migration failed", zap.String("action", action), zap.Error(err))
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("no migrations applied")
	case err != nil:
		logger.Fatal("reading schema version", zap.Error(err))
	default:
		logger.Info("schema version",
			zap.String("action", action),
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
	}
}

// parseArgs reads the action and optional step count. No arguments means "up".
func parseArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "up", 0, nil
	}
	action := args[0]
	switch action {
	case "up", "down", "version":
	default:
		return "", 0, fmt.Errorf("unknown action %q: want up, down, or version", action)
	}
	if len(args) == 1 || action == "version" {
		return action, 0, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("step count %q must be a non-negative integer", args[1])
	}
	return action, n, nil
}
