package npc

import (
	"fmt"
	"sort"
)

// Registry indexes monster templates by ID. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry indexes templates.
//
// Precondition: every template must be valid.
// Postcondition: Returns an error if two templates share an ID.
func NewRegistry(templates []*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if t == nil {
			return nil, fmt.Errorf("npc.NewRegistry: nil template")
		}
		if _, dup := r.templates[t.ID]; dup {
			return nil, fmt.Errorf("npc.NewRegistry: duplicate template id %q", t.ID)
		}
		r.templates[t.ID] = t
	}
	return r, nil
}

// LoadRegistry loads every template in dir into a Registry.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(templates)
}

// Get returns the template with the given ID.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// All returns every template ordered by ID.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of templates.
func (r *Registry) Len() int { return len(r.templates) }
