// Package fieldset switches groups of fields on and off according to the
// value of a discriminator field, such as the donor/collaborator selector of
// the registration form.
package fieldset

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
)

// ErrNoDiscriminator is returned when the form does not declare a
// discriminator.
var ErrNoDiscriminator = errors.New("fieldset: form has no discriminator")

// View mirrors activation into the presentation layer: hidden fieldsets and
// disabled controls.
type View interface {
	SetFieldsetVisible(name string, visible bool)
	SetFieldEnabled(key string, enabled bool)
}

// Option customises a Controller.
type Option func(*Controller)

// WithView binds a View refreshed on every mode change.
func WithView(view View) Option {
	return func(c *Controller) {
		c.view = view
	}
}

// Controller is the mode state machine of one form. Fields outside every
// discriminated fieldset are never touched.
type Controller struct {
	state *formstate.State
	disc  model.Discriminator
	sets  []model.Fieldset
	view  View

	mu     sync.Mutex
	mode   string
	active []string
}

// New binds a controller to state, applies the initial mode (the current
// discriminator value, or the default when empty) and revalidates once.
func New(state *formstate.State, options ...Option) (*Controller, error) {
	if state == nil {
		return nil, errors.New("fieldset: state is nil")
	}
	spec := state.Spec()
	if spec.Discriminator == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoDiscriminator, spec.ID)
	}

	c := &Controller{
		state: state,
		disc:  *spec.Discriminator,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	seen := make(map[string]bool)
	for _, names := range c.disc.Modes {
		for _, name := range names {
			seen[name] = true
		}
	}
	for _, set := range spec.Fieldsets {
		if seen[set.Name] {
			c.sets = append(c.sets, set)
		}
	}

	mode := state.String(c.disc.Key)
	if mode == "" && c.disc.Default != "" {
		mode = c.disc.Default
		if _, err := state.Set(c.disc.Key, mode); err != nil {
			return nil, fmt.Errorf("fieldset: seed default mode: %w", err)
		}
	}

	if err := state.Watch(c.disc.Key, func(_ string, value any) {
		mode, _ := value.(string)
		c.apply(mode)
	}); err != nil {
		return nil, fmt.Errorf("fieldset: watch discriminator: %w", err)
	}

	c.apply(mode)
	state.Revalidate()
	return c, nil
}

// Select changes the discriminator value through the form state, which runs
// the transition and a full revalidation. It returns the new submit gate.
func (c *Controller) Select(mode string) (bool, error) {
	return c.state.Set(c.disc.Key, mode)
}

// Mode returns the current discriminator value, known or not.
func (c *Controller) Mode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Known reports whether mode is declared by the discriminator.
func (c *Controller) Known(mode string) bool {
	_, ok := c.disc.Modes[mode]
	return ok
}

// Modes returns the declared modes in sorted order.
func (c *Controller) Modes() []string {
	out := make([]string, 0, len(c.disc.Modes))
	for mode := range c.disc.Modes {
		out = append(out, mode)
	}
	slices.Sort(out)
	return out
}

// ActiveFieldsets returns the fieldsets enabled by the current mode.
func (c *Controller) ActiveFieldsets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.active)
}

// apply flips activation for the discriminated fields. An unknown mode
// leaves every discriminated fieldset inactive.
func (c *Controller) apply(mode string) {
	enabled := make(map[string]bool)
	for _, name := range c.disc.Modes[mode] {
		enabled[name] = true
	}

	on := make(map[string]bool)
	for _, set := range c.sets {
		if !enabled[set.Name] {
			continue
		}
		for _, key := range set.Fields {
			on[key] = true
		}
	}

	var activate, deactivate []string
	visited := make(map[string]bool)
	for _, set := range c.sets {
		for _, key := range set.Fields {
			if visited[key] {
				continue
			}
			visited[key] = true
			if on[key] {
				activate = append(activate, key)
			} else {
				deactivate = append(deactivate, key)
			}
		}
	}

	// Keys come from a validated spec, SetActive cannot fail here.
	_ = c.state.SetActive(deactivate, false)
	_ = c.state.SetActive(activate, true)

	active := make([]string, 0, len(enabled))
	for _, set := range c.sets {
		if enabled[set.Name] {
			active = append(active, set.Name)
		}
	}

	c.mu.Lock()
	c.mode = mode
	c.active = active
	c.mu.Unlock()

	if c.view == nil {
		return
	}
	for _, set := range c.sets {
		c.view.SetFieldsetVisible(set.Name, enabled[set.Name])
	}
	for _, key := range deactivate {
		c.view.SetFieldEnabled(key, false)
	}
	for _, key := range activate {
		c.view.SetFieldEnabled(key, true)
	}
}
