package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/frontend/telnet"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/command"
	"github.com/cory-johannsen/arena/internal/game/world"
)

// barWidth is the number of cells in rendered health bars.
const barWidth = 20

// RenderLocation formats a location as colored Telnet text. name resolves
// exit targets to display names.
//
// Precondition: loc must be non-nil.
func RenderLocation(loc *world.Location, name func(id string) string) string {
	var b strings.Builder

	b.WriteString("\r\n")
	title := loc.Name
	if loc.IsTown() {
		title += " (town)"
	}
	b.WriteString(telnet.Colorize(telnet.BrightYellow, title))
	b.WriteString("\r\n")
	if loc.Description != "" {
		b.WriteString(telnet.Colorize(telnet.White, loc.Description))
		b.WriteString("\r\n")
	}

	if len(loc.Exits) == 0 {
		b.WriteString(telnet.Colorize(telnet.Dim, "There are no obvious exits."))
		b.WriteString("\r\n")
		return b.String()
	}
	b.WriteString(telnet.Colorize(telnet.Cyan, "Exits:"))
	b.WriteString("\r\n")
	for _, e := range loc.Exits {
		target := e.Target
		if name != nil {
			target = name(e.Target)
		}
		b.WriteString(fmt.Sprintf("  %s%-10s%s %s%s%s\r\n",
			telnet.BrightCyan, string(e.Direction), telnet.Reset,
			telnet.Dim, target, telnet.Reset))
	}
	return b.String()
}

// RenderStatus formats a character sheet.
//
// Precondition: c must be non-nil.
// Postcondition: Returns a non-empty multi-line string.
func RenderStatus(c *character.Character, locationName string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s%s%s   Level %d\r\n", telnet.BrightWhite, c.Name, telnet.Reset, c.Level))
	b.WriteString(fmt.Sprintf("  HP %s\r\n", telnet.HealthBar(c.CurrentHP, c.MaxHP, barWidth)))
	b.WriteString(fmt.Sprintf("  MP %d/%d   SP %d\r\n", c.CurrentMP, c.MaxMP, c.SP))
	next := character.ExperienceForLevel(c.Level + 1)
	if next > c.Experience {
		b.WriteString(fmt.Sprintf("  EXP %d (next level at %d)   Gold %d\r\n", c.Experience, next, c.Gold))
	} else {
		b.WriteString(fmt.Sprintf("  EXP %d   Gold %d\r\n", c.Experience, c.Gold))
	}
	s := c.Stats
	b.WriteString(fmt.Sprintf("  ATK %d  MATK %d  DEF %d  AGI %d  ACC %d  EVA %d\r\n",
		s.Attack, s.MagicAttack, s.Defense, s.Agility, s.Accuracy, s.Evasion))
	b.WriteString(fmt.Sprintf("  Location: %s\r\n", locationName))
	return b.String()
}

// RenderLogEntry formats one battle log line, colored by who acted.
func RenderLogEntry(e combat.LogEntry) string {
	switch {
	case e.Critical:
		return telnet.Colorize(telnet.BrightYellow, e.Message)
	case e.Actor == combat.ActorMonster && e.Damage > 0:
		return telnet.Colorize(telnet.BrightRed, e.Message)
	case e.Actor == combat.ActorPlayer && e.Damage > 0:
		return telnet.Colorize(telnet.BrightGreen, e.Message)
	default:
		return telnet.Colorize(telnet.White, e.Message)
	}
}

// RenderBattleLog formats a slice of log entries, one per line.
func RenderBattleLog(entries []combat.LogEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(RenderLogEntry(e))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderBattle formats the current state of a battle: turn, both health bars,
// and the available actions while it is still running.
func RenderBattle(s combat.Session) string {
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightYellow, "=== Turn %d ===", s.Turn))
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  %-16s %s\r\n", s.Player.Name, telnet.HealthBar(s.Player.HP, s.Player.MaxHP, barWidth)))
	b.WriteString(fmt.Sprintf("  %-16s %s\r\n", s.Monster.Name, telnet.HealthBar(s.Monster.HP, s.Monster.MaxHP, barWidth)))
	if !s.Ended() {
		b.WriteString(telnet.Colorize(telnet.Cyan, "  attack | defend | escape"))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderOutcome formats the end of a battle and what it did to the character.
func RenderOutcome(s combat.Session, o character.Outcome) string {
	var b strings.Builder
	switch s.Result {
	case combat.ResultVictory:
		b.WriteString(telnet.Colorf(telnet.BrightGreen, "*** Victory over %s! ***", s.Monster.Name))
		b.WriteString("\r\n")
		b.WriteString(fmt.Sprintf("  Gained %d experience and %d gold.\r\n", o.ExperienceGained, o.GoldDelta))
		if o.LevelsGained == 1 {
			b.WriteString(telnet.Colorize(telnet.BrightYellow, "  You feel stronger! Level up!"))
			b.WriteString("\r\n")
		} else if o.LevelsGained > 1 {
			b.WriteString(telnet.Colorf(telnet.BrightYellow, "  You feel much stronger! Gained %d levels!", o.LevelsGained))
			b.WriteString("\r\n")
		}
	case combat.ResultDefeat:
		b.WriteString(telnet.Colorize(telnet.BrightRed, "*** You have been defeated... ***"))
		b.WriteString("\r\n")
		if s.Penalty != nil {
			b.WriteString(fmt.Sprintf("  Lost %d gold (%d%%). %d gold remains.\r\n",
				s.Penalty.GoldLost, s.Penalty.PenaltyPercent, s.Penalty.RemainingGold))
		}
		if o.Teleported != "" {
			b.WriteString(telnet.Colorize(telnet.Yellow, "  You wake up back in town, barely alive."))
			b.WriteString("\r\n")
		}
	case combat.ResultEscaped:
		b.WriteString(telnet.Colorize(telnet.Yellow, "*** You got away safely. ***"))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderHelp lists registered commands grouped by category.
func RenderHelp(reg *command.Registry) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Available commands:"))
	b.WriteString("\r\n")
	cats := reg.CommandsByCategory()
	for _, cat := range []string{command.CategoryMovement, command.CategoryWorld, command.CategoryCombat, command.CategorySystem} {
		cmds := cats[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(telnet.Colorf(telnet.Cyan, "[%s]", cat))
		b.WriteString("\r\n")
		for _, cmd := range cmds {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage = cmd.Usage
			}
			if len(cmd.Aliases) > 0 {
				usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			b.WriteString(fmt.Sprintf("  %s%-28s%s %s\r\n", telnet.Green, usage, telnet.Reset, cmd.Help))
		}
	}
	return b.String()
}

// RenderError formats an error message as red Telnet text.
func RenderError(msg string) string {
	return telnet.Colorize(telnet.Red, msg)
}
