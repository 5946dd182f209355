package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpec is wrapped by every error returned from FormSpec.Validate.
var ErrInvalidSpec = errors.New("model: invalid form spec")

// Validate checks the form for structural problems: duplicate or dangling
// keys, unknown kinds and discriminator modes without fieldsets.
func (s FormSpec) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: form id is required", ErrInvalidSpec)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: form %q defines no fields", ErrInvalidSpec, s.ID)
	}

	keys := make(map[string]FieldSpec, len(s.Fields))
	for idx, field := range s.Fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return fmt.Errorf("%w: form %q field %d has an empty key", ErrInvalidSpec, s.ID, idx)
		}
		if _, exists := keys[key]; exists {
			return fmt.Errorf("%w: form %q defines duplicate field %q", ErrInvalidSpec, s.ID, key)
		}
		if !field.Kind.Valid() {
			return fmt.Errorf("%w: form %q field %q has unknown kind %q", ErrInvalidSpec, s.ID, key, field.Kind)
		}
		if !field.Transform.Valid() {
			return fmt.Errorf("%w: form %q field %q has unknown transform %q", ErrInvalidSpec, s.ID, key, field.Transform)
		}
		if field.Kind == KindDocument && !field.Document.Valid() {
			return fmt.Errorf("%w: form %q document field %q needs a mode (cpf, cnpj, optional-cpf)", ErrInvalidSpec, s.ID, key)
		}
		if field.Kind == KindChoice && len(field.Options) == 0 {
			return fmt.Errorf("%w: form %q choice field %q has no options", ErrInvalidSpec, s.ID, key)
		}
		keys[key] = field
	}

	for _, field := range s.Fields {
		if field.After != "" {
			start, ok := keys[field.After]
			if !ok {
				return fmt.Errorf("%w: form %q field %q is after unknown field %q", ErrInvalidSpec, s.ID, field.Key, field.After)
			}
			if start.Kind != field.Kind || (field.Kind != KindDate && field.Kind != KindTime) {
				return fmt.Errorf("%w: form %q range %q..%q must pair two date or two time fields", ErrInvalidSpec, s.ID, field.After, field.Key)
			}
		}
		if field.Kind == KindPasswordConfirm {
			target := field.Confirms
			if target == "" {
				return fmt.Errorf("%w: form %q confirmation %q does not name its password field", ErrInvalidSpec, s.ID, field.Key)
			}
			pw, ok := keys[target]
			if !ok || pw.Kind != KindPassword {
				return fmt.Errorf("%w: form %q confirmation %q targets %q which is not a password field", ErrInvalidSpec, s.ID, field.Key, target)
			}
		}
	}

	sets := make(map[string]struct{}, len(s.Fieldsets))
	for _, set := range s.Fieldsets {
		if strings.TrimSpace(set.Name) == "" {
			return fmt.Errorf("%w: form %q has a fieldset without a name", ErrInvalidSpec, s.ID)
		}
		if _, exists := sets[set.Name]; exists {
			return fmt.Errorf("%w: form %q defines duplicate fieldset %q", ErrInvalidSpec, s.ID, set.Name)
		}
		sets[set.Name] = struct{}{}
		for _, key := range set.Fields {
			if _, ok := keys[key]; !ok {
				return fmt.Errorf("%w: form %q fieldset %q names unknown field %q", ErrInvalidSpec, s.ID, set.Name, key)
			}
		}
	}

	if d := s.Discriminator; d != nil {
		field, ok := keys[d.Key]
		if !ok {
			return fmt.Errorf("%w: form %q discriminator names unknown field %q", ErrInvalidSpec, s.ID, d.Key)
		}
		if field.Kind == KindBoolean {
			return fmt.Errorf("%w: form %q discriminator %q must hold a string value", ErrInvalidSpec, s.ID, d.Key)
		}
		if len(d.Modes) == 0 {
			return fmt.Errorf("%w: form %q discriminator %q defines no modes", ErrInvalidSpec, s.ID, d.Key)
		}
		for mode, names := range d.Modes {
			for _, name := range names {
				if _, ok := sets[name]; !ok {
					return fmt.Errorf("%w: form %q mode %q names unknown fieldset %q", ErrInvalidSpec, s.ID, mode, name)
				}
			}
		}
		if d.Default != "" {
			if _, ok := d.Modes[d.Default]; !ok {
				return fmt.Errorf("%w: form %q default mode %q is not defined", ErrInvalidSpec, s.ID, d.Default)
			}
		}
	}

	for mode, ep := range s.Endpoints {
		if strings.TrimSpace(ep.Path) == "" {
			return fmt.Errorf("%w: form %q endpoint for mode %q has no path", ErrInvalidSpec, s.ID, mode)
		}
	}

	return nil
}
