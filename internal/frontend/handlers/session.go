// Package handlers provides Telnet session handling and command processing.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/battle"
	"github.com/cory-johannsen/arena/internal/frontend/telnet"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/command"
	"github.com/cory-johannsen/arena/internal/game/session"
	"github.com/cory-johannsen/arena/internal/game/world"
)

// Game is the set of battle operations a Telnet session drives.
// *battle.Service satisfies it.
type Game interface {
	Login(ctx context.Context, name string) (*character.Character, bool, error)
	Character(ctx context.Context, id int64) (*character.Character, error)
	Explore(ctx context.Context, charID int64, dest string) (battle.ExploreResult, error)
	Act(ctx context.Context, sessionID string, action combat.Action) (battle.ActResult, error)
	Abandon(ctx context.Context, sessionID string) error
	Status(sessionID string) (combat.Session, error)
	ActiveBattle(charID int64) (string, bool)
	Rest(ctx context.Context, charID int64) (*character.Character, error)
}

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan +
	"  +-----------------------------------+\r\n" +
	"  |          A R E N A                |\r\n" +
	"  |   monsters wait beyond the walls  |\r\n" +
	"  +-----------------------------------+" + telnet.Reset + "\r\n\r\n" +
	"  Type " + telnet.Green + "login <name>" + telnet.Reset + " to enter. New names create a new hero.\r\n" +
	"  Type " + telnet.Green + "quit" + telnet.Reset + " to disconnect.\r\n"

// GameHandler implements telnet.SessionHandler: a login prompt followed by
// the arena command loop.
type GameHandler struct {
	game     Game
	world    *world.Manager
	registry *command.Registry
	logger   *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: game, w, and logger must be non-nil.
// Postcondition: Returns a handler using the default command registry.
func NewGameHandler(game Game, w *world.Manager, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		game:     game,
		world:    w,
		registry: command.DefaultRegistry(),
		logger:   logger,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the banner and
// reads commands until the player logs in or quits.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed := command.Parse(line)
		switch parsed.Command {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("client quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil

		case "login":
			c := h.login(ctx, conn, parsed.RawArgs)
			if c == nil {
				continue
			}
			h.logger.Info("player logged in",
				zap.String("remote_addr", addr),
				zap.String("character", c.Name),
				zap.Int64("character_id", c.ID),
			)
			return h.play(ctx, conn, c)

		case "help":
			_ = conn.WriteLine(telnet.Colorize(telnet.Green, "  login <name>") + "  enter the arena")
			_ = conn.WriteLine(telnet.Colorize(telnet.Green, "  quit") + "          disconnect")

		default:
			_ = conn.WriteLine(RenderError(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", parsed.Command)))
		}
	}
}

// login loads or creates the named character.
//
// Postcondition: Returns nil when the failure was shown to the player and the
// login loop should continue.
func (h *GameHandler) login(ctx context.Context, conn *telnet.Conn, name string) *character.Character {
	if name == "" {
		_ = conn.WriteLine(RenderError("Usage: login <name>"))
		return nil
	}
	if err := character.ValidateName(name); err != nil {
		_ = conn.WriteLine(RenderError(err.Error()))
		return nil
	}
	c, created, err := h.game.Login(ctx, name)
	if err != nil {
		h.logger.Error("login failed", zap.String("name", name), zap.Error(err))
		_ = conn.WriteLine(RenderError("An internal error occurred. Please try again."))
		return nil
	}
	if created {
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "A new hero steps forward: %s!", c.Name))
	} else {
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, %s.", c.Name))
	}
	return c
}

// play runs the in-game command loop for c. Any battle still running when
// the loop exits is abandoned.
//
// Postcondition: Returns nil on quit, ctx.Err() on cancellation, or a wrapped read error.
func (h *GameHandler) play(ctx context.Context, conn *telnet.Conn, c *character.Character) error {
	defer h.abandonActive(c)

	if id, ok := h.game.ActiveBattle(c.ID); ok {
		if s, err := h.game.Status(id); err == nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You are still locked in battle!"))
			_ = conn.Write([]byte(RenderBattle(s)))
		}
	} else {
		h.look(ctx, conn, c.ID)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(h.prompt(ctx, c)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed := command.Parse(line)
		cmd, ok := h.registry.Resolve(parsed.Command)
		if !ok {
			// Try it as an exit name, e.g. "bridge".
			if loc, found := h.world.GetLocation(c.Location); found {
				if _, isExit := loc.ExitTo(parsed.Command); isExit {
					h.explore(ctx, conn, c.ID, parsed.Command)
					continue
				}
			}
			_ = conn.WriteLine(RenderError(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", parsed.Command)))
			continue
		}
		if cmd.Handler == command.HandlerQuit {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Farewell, "+c.Name+"."))
			return nil
		}
		h.dispatch(ctx, conn, c, cmd, parsed)
	}
}

func (h *GameHandler) prompt(ctx context.Context, c *character.Character) string {
	if id, ok := h.game.ActiveBattle(c.ID); ok {
		if s, err := h.game.Status(id); err == nil {
			return telnet.Colorf(telnet.BrightRed, "[%s %d/%d vs %s]> ", c.Name, s.Player.HP, s.Player.MaxHP, s.Monster.Name)
		}
	}
	if fresh, err := h.game.Character(ctx, c.ID); err == nil {
		*c = *fresh
	}
	return telnet.Colorf(telnet.BrightCyan, "[%s %d/%d]> ", c.Name, c.CurrentHP, c.MaxHP)
}

func (h *GameHandler) abandonActive(c *character.Character) {
	id, ok := h.game.ActiveBattle(c.ID)
	if !ok {
		return
	}
	if err := h.game.Abandon(context.Background(), id); err != nil && !errors.Is(err, combat.ErrInvalidSessionState) {
		h.logger.Warn("abandoning battle on disconnect", zap.String("session", id), zap.Error(err))
	}
}

// locationName returns the display name of a location ID.
func (h *GameHandler) locationName(id string) string {
	if loc, ok := h.world.GetLocation(id); ok {
		return loc.Name
	}
	return id
}

// report shows err to the player, logging anything that is not a game rule.
func (h *GameHandler) report(conn *telnet.Conn, err error) {
	var msg string
	switch {
	case errors.Is(err, battle.ErrNoRoute):
		msg = battle.ErrNoRoute.Error()
	case errors.Is(err, battle.ErrExhausted), errors.Is(err, battle.ErrNotInTown):
		msg = err.Error()
	case errors.Is(err, session.ErrBattleInProgress):
		msg = "You are in the middle of a battle! attack, defend, or escape."
	case errors.Is(err, combat.ErrInvalidSessionState):
		msg = "You are not fighting anything."
	case errors.Is(err, combat.ErrUnknownAction):
		msg = "That is not something you can do in battle."
	default:
		h.logger.Error("command failed", zap.Error(err))
		msg = "An internal error occurred. Please try again."
	}
	_ = conn.WriteLine(RenderError(msg))
}
