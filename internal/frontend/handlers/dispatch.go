package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/frontend/telnet"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/command"
	"github.com/cory-johannsen/arena/internal/game/world"
)

// dispatch runs one resolved command for c.
func (h *GameHandler) dispatch(ctx context.Context, conn *telnet.Conn, c *character.Character, cmd *command.Command, parsed command.ParseResult) {
	switch cmd.Handler {
	case command.HandlerMove:
		h.explore(ctx, conn, c.ID, cmd.Name)
	case command.HandlerGo:
		if parsed.RawArgs == "" {
			_ = conn.WriteLine(RenderError("Usage: " + cmd.Usage))
			return
		}
		h.explore(ctx, conn, c.ID, h.resolvePlace(c.Location, parsed.RawArgs))
	case command.HandlerLook:
		h.look(ctx, conn, c.ID)
	case command.HandlerSearch:
		h.explore(ctx, conn, c.ID, "")
	case command.HandlerRest:
		h.rest(ctx, conn, c)
	case command.HandlerStatus:
		h.status(ctx, conn, c)
	case command.HandlerAttack:
		h.act(ctx, conn, c, combat.ActionAttack)
	case command.HandlerDefend:
		h.act(ctx, conn, c, combat.ActionDefend)
	case command.HandlerEscape:
		h.act(ctx, conn, c, combat.ActionEscape)
	case command.HandlerBattle:
		h.showBattle(conn, c)
	case command.HandlerAbandon:
		h.abandon(ctx, conn, c)
	case command.HandlerHelp:
		_ = conn.Write([]byte(RenderHelp(h.registry)))
	default:
		_ = conn.WriteLine(RenderError(fmt.Sprintf("Unknown command: %s.", cmd.Name)))
	}
}

// resolvePlace maps a typed place name to an exit direction of the location
// fromID. Unmatched input is returned unchanged.
func (h *GameHandler) resolvePlace(fromID, typed string) string {
	loc, ok := h.world.GetLocation(fromID)
	if !ok {
		return typed
	}
	for _, e := range loc.Exits {
		if strings.EqualFold(string(e.Direction), typed) || strings.EqualFold(e.Target, typed) {
			return string(e.Direction)
		}
		if strings.EqualFold(h.locationName(e.Target), typed) {
			return string(e.Direction)
		}
	}
	return strings.ToLower(typed)
}

func (h *GameHandler) look(ctx context.Context, conn *telnet.Conn, charID int64) {
	c, err := h.game.Character(ctx, charID)
	if err != nil {
		h.report(conn, err)
		return
	}
	loc, ok := h.world.GetLocation(c.Location)
	if !ok {
		loc = h.world.DefaultTown()
	}
	_ = conn.Write([]byte(RenderLocation(loc, h.locationName)))
}

// explore moves toward dest, or searches in place when dest is empty, and
// shows any battle that starts.
func (h *GameHandler) explore(ctx context.Context, conn *telnet.Conn, charID int64, dest string) {
	res, err := h.game.Explore(ctx, charID, dest)
	if err != nil {
		h.report(conn, err)
		return
	}
	if dest != "" {
		_ = conn.Write([]byte(RenderLocation(res.Location, h.locationName)))
	} else {
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "You search the area..."))
	}
	if res.Battle == nil {
		if dest == "" {
			if res.Location.Kind == world.KindTown {
				_ = conn.WriteLine(telnet.Colorize(telnet.Green, "The town is peaceful. No monsters here."))
			} else {
				_ = conn.WriteLine(telnet.Colorize(telnet.White, "Nothing stirs."))
			}
		}
		return
	}
	_ = conn.Write([]byte(RenderBattleLog(res.Battle.Log)))
	_ = conn.Write([]byte(RenderBattle(*res.Battle)))
}

func (h *GameHandler) act(ctx context.Context, conn *telnet.Conn, c *character.Character, action combat.Action) {
	id, ok := h.game.ActiveBattle(c.ID)
	if !ok {
		_ = conn.WriteLine(RenderError("You are not fighting anything."))
		return
	}
	res, err := h.game.Act(ctx, id, action)
	if err != nil {
		h.report(conn, err)
		return
	}
	_ = conn.Write([]byte(RenderBattleLog(res.Turn.Log)))
	if !res.Turn.Ended {
		_ = conn.Write([]byte(RenderBattle(res.Turn.Session)))
		return
	}
	if res.Character != nil {
		*c = *res.Character
	}
	var outcome character.Outcome
	if res.Outcome != nil {
		outcome = *res.Outcome
	}
	_ = conn.Write([]byte(RenderOutcome(res.Turn.Session, outcome)))
	if outcome.Teleported != "" {
		h.look(ctx, conn, c.ID)
	}
}

func (h *GameHandler) showBattle(conn *telnet.Conn, c *character.Character) {
	id, ok := h.game.ActiveBattle(c.ID)
	if !ok {
		_ = conn.WriteLine(RenderError("You are not fighting anything."))
		return
	}
	s, err := h.game.Status(id)
	if err != nil {
		h.report(conn, err)
		return
	}
	_ = conn.Write([]byte(RenderBattle(s)))
}

func (h *GameHandler) abandon(ctx context.Context, conn *telnet.Conn, c *character.Character) {
	id, ok := h.game.ActiveBattle(c.ID)
	if !ok {
		_ = conn.WriteLine(RenderError("You are not fighting anything."))
		return
	}
	if err := h.game.Abandon(ctx, id); err != nil {
		h.report(conn, err)
		return
	}
	_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You turn your back on the fight and walk away."))
}

func (h *GameHandler) rest(ctx context.Context, conn *telnet.Conn, c *character.Character) {
	rested, err := h.game.Rest(ctx, c.ID)
	if err != nil {
		h.report(conn, err)
		return
	}
	*c = *rested
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "You rest at the inn. HP %d/%d, MP %d/%d.",
		c.CurrentHP, c.MaxHP, c.CurrentMP, c.MaxMP))
}

func (h *GameHandler) status(ctx context.Context, conn *telnet.Conn, c *character.Character) {
	fresh, err := h.game.Character(ctx, c.ID)
	if err != nil {
		h.report(conn, err)
		return
	}
	*c = *fresh
	_ = conn.Write([]byte(RenderStatus(c, h.locationName(c.Location))))
	if id, ok := h.game.ActiveBattle(c.ID); ok {
		if s, err := h.game.Status(id); err == nil {
			_ = conn.Write([]byte(RenderBattle(s)))
		}
	}
}
