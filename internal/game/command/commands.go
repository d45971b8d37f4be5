// Package command provides the command registry, parser, and built-in arena commands.
package command

// Categories for organizing commands in help output.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryCombat   = "combat"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to session handlers.
const (
	HandlerMove    = "move"
	HandlerGo      = "go"
	HandlerLook    = "look"
	HandlerSearch  = "search"
	HandlerRest    = "rest"
	HandlerStatus  = "status"
	HandlerAttack  = "attack"
	HandlerDefend  = "defend"
	HandlerEscape  = "escape"
	HandlerBattle  = "battle"
	HandlerAbandon = "abandon"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "go <place>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the session handler that runs the command.
	Handler string
	// InBattle marks commands only meaningful during a battle.
	InBattle bool
}

// BuiltinCommands returns all built-in arena commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "north", Aliases: []string{"n"}, Help: "Walk north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Walk south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Walk east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Walk west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "go", Aliases: []string{"travel"}, Usage: "go <place>", Help: "Walk to an adjacent place by name or direction", Category: CategoryMovement, Handler: HandlerGo},

		{Name: "look", Aliases: []string{"l"}, Help: "Describe where you are", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "search", Aliases: []string{"explore"}, Help: "Search the area for monsters", Category: CategoryWorld, Handler: HandlerSearch},
		{Name: "rest", Aliases: []string{"inn"}, Help: "Recover HP and MP (towns only)", Category: CategoryWorld, Handler: HandlerRest},
		{Name: "status", Aliases: []string{"st", "score"}, Help: "Show your character", Category: CategoryWorld, Handler: HandlerStatus},

		{Name: "attack", Aliases: []string{"a", "att", "kill"}, Help: "Strike the monster", Category: CategoryCombat, Handler: HandlerAttack, InBattle: true},
		{Name: "defend", Aliases: []string{"d", "guard"}, Help: "Brace to halve the next blow", Category: CategoryCombat, Handler: HandlerDefend, InBattle: true},
		{Name: "escape", Aliases: []string{"flee", "run"}, Help: "Try to run away", Category: CategoryCombat, Handler: HandlerEscape, InBattle: true},
		{Name: "battle", Aliases: []string{"b"}, Help: "Show the current battle", Category: CategoryCombat, Handler: HandlerBattle, InBattle: true},
		{Name: "abandon", Help: "Walk away from the battle, keeping your wounds", Category: CategoryCombat, Handler: HandlerAbandon, InBattle: true},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "logout"}, Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// IsMovementCommand reports whether the command name is a compass direction.
func IsMovementCommand(name string) bool {
	switch name {
	case "north", "south", "east", "west":
		return true
	default:
		return false
	}
}
