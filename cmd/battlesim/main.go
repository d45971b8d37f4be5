// Package main runs seeded offline battles between a fresh character and a
// monster template and prints the outcome rates. It needs no database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/battle"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/reward"
	"github.com/cory-johannsen/arena/internal/observability"
	"github.com/cory-johannsen/arena/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "optional configuration file; defaults are used when empty")
	monsterID := flag.String("monster", "", "monster template ID; empty simulates every template")
	level := flag.Int("level", 1, "character level")
	battles := flag.Int("n", 1000, "battles per monster")
	seed := flag.Int64("seed", 0, "dice seed; 0 picks a random seed")
	strategyName := flag.String("strategy", "attack", "player strategy: attack or cautious")
	verbose := flag.Bool("v", false, "log every dice draw")
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromViper(config.Defaults())
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := zap.NewNop()
	if *verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		if logger, err = observability.NewLogger(cfg.Logging); err != nil {
			log.Fatalf("initializing logger: %v", err)
		}
	}
	defer logger.Sync()

	var strategy battle.Strategy
	switch *strategyName {
	case "attack":
		strategy = battle.AlwaysAttack
	case "cautious":
		strategy = battle.Cautious
	default:
		log.Fatalf("invalid strategy %q: must be 'attack' or 'cautious'", *strategyName)
	}

	if *seed == 0 {
		if *seed, err = dice.NewSeed(); err != nil {
			log.Fatalf("generating seed: %v", err)
		}
	}
	roller := dice.NewLoggedRoller(dice.NewSeededSource(*seed), logger)

	monsters, err := npc.LoadRegistry(cfg.Arena.MonstersDir())
	if err != nil {
		log.Fatalf("loading monster templates: %v", err)
	}
	templates := monsters.All()
	if *monsterID != "" {
		t, ok := monsters.Get(*monsterID)
		if !ok {
			log.Fatalf("unknown monster template %q", *monsterID)
		}
		templates = []*npc.Template{t}
	}

	var selector combat.Selector = ai.Heuristic{}
	aiScripts := filepath.Join(cfg.Arena.ScriptsDir(), "ai")
	if info, err := os.Stat(aiScripts); err == nil && info.IsDir() {
		scriptMgr := scripting.NewManager(roller, logger)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadVM(ai.ScriptVM, aiScripts, cfg.Arena.ScriptInstructionLimit); err != nil {
			log.Fatalf("loading ai scripts: %v", err)
		}
		scripted := ai.NewScripted(scriptMgr, ai.Heuristic{}, logger)
		for _, t := range monsters.All() {
			if t.AIScript != "" {
				scripted.Register(t.ID, t.AIScript)
			}
		}
		selector = scripted
	}

	hero, err := character.New("Simulant", "sim")
	if err != nil {
		log.Fatalf("creating character: %v", err)
	}
	if *level > 1 {
		hero.GainExperience(character.ExperienceForLevel(*level))
	}
	engine := combat.NewEngine(roller, selector, reward.NewCalculator("sim"), logger)

	fmt.Printf("seed=%d level=%d battles=%d strategy=%s\n\n", *seed, hero.Level, *battles, *strategyName)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "monster\tlvl\twin%\tlose%\tesc%\tstale\tturns\tgold+\tgold-\t")
	for _, t := range templates {
		rep, err := battle.Simulate(engine, hero.Combatant(), t.NewCombatant(), strategy, *battles)
		if err != nil {
			log.Fatalf("simulating %s: %v", t.ID, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\t%d\t%.1f\t%d\t%d\t\n",
			t.ID, t.Level,
			rep.Rate(rep.Victories), rep.Rate(rep.Defeats), rep.Rate(rep.Escapes),
			rep.Stalemates, rep.AverageTurns(), rep.GoldWon, rep.GoldLost,
		)
	}
	_ = w.Flush()
	fmt.Printf("\n[%s]\n", time.Since(start))
}
