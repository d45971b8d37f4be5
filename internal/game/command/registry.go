package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// minPrefix is the shortest abbreviation Resolve expands to a command name.
const minPrefix = 2

// Registry resolves typed words to commands by name, alias, or unambiguous
// prefix.
type Registry struct {
	byName  map[string]*Command
	byAlias map[string]*Command
	sorted  []*Command
}

// NewRegistry indexes cmds.
//
// Precondition: Names and aliases are lowercase and unique across cmds.
// Postcondition: Returns a Registry, or an error listing every collision.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*Command, len(cmds)),
		byAlias: make(map[string]*Command),
	}
	var errs []error
	for i := range cmds {
		cmd := &cmds[i]
		if r.taken(cmd.Name) {
			errs = append(errs, fmt.Errorf("command %q is already registered", cmd.Name))
			continue
		}
		r.byName[cmd.Name] = cmd
		r.sorted = append(r.sorted, cmd)
		for _, alias := range cmd.Aliases {
			if r.taken(alias) {
				errs = append(errs, fmt.Errorf("alias %q of %q is already registered", alias, cmd.Name))
				continue
			}
			r.byAlias[alias] = cmd
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

func (r *Registry) taken(word string) bool {
	_, name := r.byName[word]
	_, alias := r.byAlias[word]
	return name || alias
}

// DefaultRegistry returns a Registry of BuiltinCommands. It panics if the
// built-in table has a collision.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve finds the command for input: an exact name, then an alias, then a
// name that input abbreviates when exactly one does.
//
// Postcondition: Returns (command, true) on a match, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	input = strings.ToLower(input)
	if cmd, ok := r.byName[input]; ok {
		return cmd, true
	}
	if cmd, ok := r.byAlias[input]; ok {
		return cmd, true
	}
	if len(input) < minPrefix {
		return nil, false
	}
	var match *Command
	for _, cmd := range r.sorted {
		if !strings.HasPrefix(cmd.Name, input) {
			continue
		}
		if match != nil {
			return nil, false
		}
		match = cmd
	}
	return match, match != nil
}

// Commands returns every command ordered by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// CommandsByCategory groups Commands by Category, preserving name order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
