// Package main runs the arena server: a Telnet front end over the battle
// service, backed by PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/battle"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/frontend/handlers"
	"github.com/cory-johannsen/arena/internal/frontend/telnet"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/reward"
	"github.com/cory-johannsen/arena/internal/game/world"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
	"github.com/cory-johannsen/arena/internal/server"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrateOnStart := flag.Bool("migrate", true, "apply pending database migrations before serving")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	tracer, shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("initializing tracing", zap.Error(err))
	}

	logger.Info("starting arena",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("content_dir", cfg.Arena.ContentDir),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	// Random source: seeded for reproducible runs, crypto otherwise.
	var src dice.Source
	if cfg.Arena.Seed != 0 {
		src = dice.NewSeededSource(cfg.Arena.Seed)
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Arena.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	// Load content
	contentStart := time.Now()
	monsters, err := npc.LoadRegistry(cfg.Arena.MonstersDir())
	if err != nil {
		logger.Fatal("loading monster templates", zap.Error(err))
	}
	regions, err := world.LoadRegionsFromDir(cfg.Arena.RegionsDir())
	if err != nil {
		logger.Fatal("loading regions", zap.Error(err))
	}
	worldMgr, err := world.NewManager(regions, cfg.Arena.DefaultTown)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}
	if err := worldMgr.ValidateMonsters(func(id string) bool {
		_, ok := monsters.Get(id)
		return ok
	}); err != nil {
		logger.Fatal("validating encounter tables", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("monsters", monsters.Len()),
		zap.Int("regions", worldMgr.RegionCount()),
		zap.Int("locations", worldMgr.LocationCount()),
		zap.String("default_town", worldMgr.DefaultTown().ID),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Monster AI: Lua hooks where a template names one, the heuristic otherwise.
	scriptMgr := scripting.NewManager(roller, logger)
	defer scriptMgr.Close()
	var selector combat.Selector = ai.Heuristic{}
	aiScripts := filepath.Join(cfg.Arena.ScriptsDir(), "ai")
	if info, err := os.Stat(aiScripts); err == nil && info.IsDir() {
		if err := scriptMgr.LoadVM(ai.ScriptVM, aiScripts, cfg.Arena.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading ai scripts", zap.Error(err))
		}
		scripted := ai.NewScripted(scriptMgr, ai.Heuristic{}, logger)
		for _, t := range monsters.All() {
			if t.AIScript != "" {
				scripted.Register(t.ID, t.AIScript)
			}
		}
		selector = scripted
		logger.Info("ai scripts loaded", zap.String("dir", aiScripts))
	}

	// Database
	dbStart := time.Now()
	if *migrateOnStart {
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	// Build services
	engine := combat.NewEngine(roller, selector, reward.NewCalculator(worldMgr.DefaultTown().ID), logger)
	svc := battle.NewService(battle.Deps{
		Characters:  postgres.NewCharacterRepository(pool.DB()),
		World:       worldMgr,
		Encounters:  encounter.NewResolver(worldMgr, monsters, roller, cfg.Arena.DefaultEncounterRate, logger),
		Engine:      engine,
		Tracer:      tracer,
		Logger:      logger,
		IdleTimeout: cfg.Arena.BattleIdleTimeout,
	})
	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewGameHandler(svc, worldMgr, logger), logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	healthDone := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-healthDone:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
					logger.Debug("arena status",
						zap.Int("battles", svc.ActiveBattles()),
						zap.Int("telnet_sessions", acceptor.ActiveSessions()),
					)
				}
			}
		},
		StopFn: func() {
			close(healthDone)
			pool.Close()
		},
	})
	lifecycle.Add("telnet", acceptor)
	tracingDone := make(chan struct{})
	lifecycle.Add("telemetry", &server.FuncService{
		StartFn: func() error {
			<-tracingDone
			return nil
		},
		StopFn: func() {
			close(tracingDone)
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				logger.Warn("flushing traces", zap.Error(err))
			}
		},
	})

	logger.Info("arena initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
