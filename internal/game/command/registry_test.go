package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Greater(t, len(r.Commands()), 0)
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("north")
	assert.True(t, ok)
	assert.Equal(t, "north", cmd.Name)
	assert.Equal(t, HandlerMove, cmd.Handler)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("n")
	assert.True(t, ok)
	assert.Equal(t, "north", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("equip")
	assert.False(t, ok)
}

func TestResolve_AllMovementDirections(t *testing.T) {
	r := DefaultRegistry()
	directions := []struct {
		name  string
		alias string
	}{
		{"north", "n"},
		{"south", "s"},
		{"east", "e"},
		{"west", "w"},
	}

	for _, d := range directions {
		cmd, ok := r.Resolve(d.name)
		require.True(t, ok, "canonical name %q not found", d.name)
		assert.Equal(t, d.name, cmd.Name)
		assert.Equal(t, HandlerMove, cmd.Handler)

		aliasCmd, ok := r.Resolve(d.alias)
		require.True(t, ok, "alias %q not found", d.alias)
		assert.Equal(t, d.name, aliasCmd.Name)
	}
}

func TestResolve_ArenaCommands(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input    string
		handler  string
		inBattle bool
	}{
		{"look", HandlerLook, false},
		{"l", HandlerLook, false},
		{"go", HandlerGo, false},
		{"explore", HandlerSearch, false},
		{"rest", HandlerRest, false},
		{"score", HandlerStatus, false},
		{"attack", HandlerAttack, true},
		{"a", HandlerAttack, true},
		{"d", HandlerDefend, true},
		{"flee", HandlerEscape, true},
		{"run", HandlerEscape, true},
		{"abandon", HandlerAbandon, true},
		{"quit", HandlerQuit, false},
		{"exit", HandlerQuit, false},
		{"?", HandlerHelp, false},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
		assert.Equal(t, tt.inBattle, cmd.InBattle, "input %q battle flag", tt.input)
	}
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "attack", Aliases: []string{"a"}},
		{Name: "attack"},
		{Name: "abandon", Aliases: []string{"a"}},
		{Name: "look", Aliases: []string{"abandon"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `command "attack" is already registered`)
	assert.Contains(t, err.Error(), `alias "a" of "abandon"`)
	assert.Contains(t, err.Error(), `alias "abandon" of "look"`)
}

func TestResolve_Prefix(t *testing.T) {
	r := DefaultRegistry()
	for input, want := range map[string]string{
		"sta": "status",
		"ab":  "abandon",
		"es":  "escape",
		"ba":  "battle",
		"ATT": "attack",
		"he":  "help",
	} {
		cmd, ok := r.Resolve(input)
		require.True(t, ok, input)
		assert.Equal(t, want, cmd.Name, input)
	}
}

func TestResolve_AmbiguousOrShortPrefix(t *testing.T) {
	r, err := NewRegistry([]Command{{Name: "attack"}, {Name: "attune"}, {Name: "rest"}})
	require.NoError(t, err)

	_, ok := r.Resolve("att")
	assert.False(t, ok, "two commands share the prefix")
	cmd, ok := r.Resolve("attu")
	require.True(t, ok)
	assert.Equal(t, "attune", cmd.Name)
	_, ok = r.Resolve("r")
	assert.False(t, ok, "single letters only match names and aliases")
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	cats := r.CommandsByCategory()

	assert.Contains(t, cats, CategoryMovement)
	assert.Contains(t, cats, CategoryWorld)
	assert.Contains(t, cats, CategoryCombat)
	assert.Contains(t, cats, CategorySystem)
	assert.Len(t, cats[CategoryMovement], 5)
	assert.Len(t, cats[CategoryCombat], 5)
}

func TestCommands_SortedByName(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		// Canonical name should resolve
		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		// All aliases should resolve to same command
		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}

func TestIsMovementCommand(t *testing.T) {
	assert.True(t, IsMovementCommand("north"))
	assert.True(t, IsMovementCommand("south"))
	assert.True(t, IsMovementCommand("west"))
	assert.False(t, IsMovementCommand("go"))
	assert.False(t, IsMovementCommand("look"))
}
