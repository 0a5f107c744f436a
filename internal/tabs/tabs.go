// Package tabs implements an exclusive selection over named options, each
// made of a control (the tab) and an optional content panel.
package tabs

import (
	"errors"
	"fmt"
)

var (
	ErrNoOptions       = errors.New("tab group has no options")
	ErrDuplicateOption = errors.New("duplicate tab option")
	ErrUnknownOption   = errors.New("unknown tab option")
)

// Marker is anything that can be switched between an active and an inactive
// presentation, such as an "active" class or a display style.
type Marker interface {
	SetActive(active bool)
}

// Option binds a name to its control and, optionally, its panel.
type Option struct {
	Name    string
	Control Marker
	Panel   Marker
}

// ChangeFunc is called after the active option moved from prev to next.
type ChangeFunc func(prev, next string)

// Group keeps exactly one option active. A Group is not safe for concurrent
// use; callers serialise access.
type Group struct {
	name     string
	options  []Option
	index    map[string]int
	active   int
	onChange ChangeFunc
}

// New builds a group and applies the initial state: the initial option is
// marked active and every other option inactive. An empty initial selects the
// first option.
func New(name string, options []Option, initial string, onChange ChangeFunc) (*Group, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoOptions)
	}
	g := &Group{
		name:     name,
		options:  append([]Option(nil), options...),
		index:    make(map[string]int, len(options)),
		onChange: onChange,
	}
	for i, o := range g.options {
		if _, dup := g.index[o.Name]; dup {
			return nil, fmt.Errorf("%s: %w: %q", name, ErrDuplicateOption, o.Name)
		}
		g.index[o.Name] = i
	}

	if initial == "" {
		initial = g.options[0].Name
	}
	start, ok := g.index[initial]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", name, ErrUnknownOption, initial)
	}
	g.active = start
	for i := range g.options {
		g.mark(i, i == start)
	}
	return g, nil
}

// Select activates the named option. It reports whether the selection
// changed; selecting the active option is a no-op.
func (g *Group) Select(name string) (bool, error) {
	next, ok := g.index[name]
	if !ok {
		return false, fmt.Errorf("%s: %w: %q", g.name, ErrUnknownOption, name)
	}
	if next == g.active {
		return false, nil
	}

	prev := g.active
	g.mark(prev, false)
	g.mark(next, true)
	g.active = next

	if g.onChange != nil {
		g.onChange(g.options[prev].Name, g.options[next].Name)
	}
	return true, nil
}

func (g *Group) mark(i int, active bool) {
	o := g.options[i]
	if o.Control != nil {
		o.Control.SetActive(active)
	}
	if o.Panel != nil {
		o.Panel.SetActive(active)
	}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Active returns the name of the active option.
func (g *Group) Active() string { return g.options[g.active].Name }

// Options lists option names in insertion order.
func (g *Group) Options() []string {
	out := make([]string, len(g.options))
	for i, o := range g.options {
		out[i] = o.Name
	}
	return out
}

// Has reports whether the group contains the named option.
func (g *Group) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}
