// Package formstate keeps the authoritative value snapshot of a form and
// derives per-field validation results and the submit gate from it.
package formstate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-hemoform/pkg/model"
)

var (
	// ErrUnknownField is returned when a key is not part of the form spec.
	ErrUnknownField = errors.New("formstate: unknown field")
	// ErrKindMismatch is returned when a string is assigned to a boolean
	// field or the other way round.
	ErrKindMismatch = errors.New("formstate: value kind mismatch")
)

// View receives the visual and ARIA feedback produced by every revalidation.
// Implementations bind it to whatever front end renders the form.
type View interface {
	ApplyFeedback(fb model.Feedback)
	SetSubmitEnabled(enabled bool)
}

// Watcher is notified after the value of a watched field changes and before
// the revalidation triggered by that change runs.
type Watcher func(key string, value any)

// Option customises a State.
type Option func(*State)

// WithView binds a View that is refreshed on every revalidation.
func WithView(view View) Option {
	return func(s *State) {
		s.view = view
	}
}

// State owns the authoritative snapshot of one form: raw values, which fields
// are active, and the validation results derived from them. Every change
// triggers a total, synchronous revalidation.
type State struct {
	spec   model.FormSpec
	fields map[string]model.FieldSpec

	mu       sync.Mutex
	values   map[string]any
	inactive map[string]bool
	results  map[string]model.ValidationResult
	allowed  bool

	view     View
	watchers map[string][]Watcher
}

// New validates spec and returns a state seeded with default values. The
// spec is checked up front so a missing or malformed field is reported here
// rather than skipped later.
func New(spec model.FormSpec, options ...Option) (*State, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s := &State{
		spec:     spec,
		fields:   make(map[string]model.FieldSpec, len(spec.Fields)),
		values:   make(map[string]any, len(spec.Fields)),
		inactive: make(map[string]bool),
		results:  make(map[string]model.ValidationResult, len(spec.Fields)),
		watchers: make(map[string][]Watcher),
	}
	for _, field := range spec.Fields {
		s.fields[field.Key] = field
		s.values[field.Key] = s.defaultValue(field)
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.Revalidate()
	return s, nil
}

// Spec returns the form description the state was built from.
func (s *State) Spec() model.FormSpec {
	return s.spec
}

// Set stores a string value, notifies watchers and revalidates the whole
// form. It returns whether submission is allowed afterwards.
func (s *State) Set(key, value string) (bool, error) {
	field, ok := s.fields[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if field.Kind.IsBoolean() {
		return false, fmt.Errorf("%w: %q holds a boolean", ErrKindMismatch, key)
	}
	s.store(key, value)
	return s.Revalidate(), nil
}

// SetBool stores a boolean value (checkboxes), notifies watchers and
// revalidates.
func (s *State) SetBool(key string, value bool) (bool, error) {
	field, ok := s.fields[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if !field.Kind.IsBoolean() {
		return false, fmt.Errorf("%w: %q holds a string", ErrKindMismatch, key)
	}
	s.store(key, value)
	return s.Revalidate(), nil
}

// Fill assigns several values at once and revalidates a single time. Values
// are coerced to the field kind: booleans accept bool or "true"/"false",
// every other kind takes the string form of the value.
func (s *State) Fill(values map[string]any) (bool, error) {
	coerced := make(map[string]any, len(values))
	for key, raw := range values {
		field, ok := s.fields[key]
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		value, err := coerce(field, raw)
		if err != nil {
			return false, err
		}
		coerced[key] = value
	}

	// Stored in declaration order; watchers fire per key and the single
	// revalidation below sees the final activation.
	for _, field := range s.spec.Fields {
		if value, ok := coerced[field.Key]; ok {
			s.store(field.Key, value)
		}
	}
	return s.Revalidate(), nil
}

func (s *State) store(key string, value any) {
	s.mu.Lock()
	previous := s.values[key]
	s.values[key] = value
	watchers := append([]Watcher(nil), s.watchers[key]...)
	s.mu.Unlock()

	if previous == value {
		return
	}
	for _, fn := range watchers {
		fn(key, value)
	}
}

// Watch registers fn to run whenever key changes value.
func (s *State) Watch(key string, fn Watcher) error {
	if _, ok := s.fields[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if fn == nil {
		return nil
	}
	s.mu.Lock()
	s.watchers[key] = append(s.watchers[key], fn)
	s.mu.Unlock()
	return nil
}

// SetActive enables or disables fields without revalidating; callers toggle
// a whole fieldset and then call Revalidate once.
func (s *State) SetActive(keys []string, active bool) error {
	for _, key := range keys {
		if _, ok := s.fields[key]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if active {
			delete(s.inactive, key)
		} else {
			s.inactive[key] = true
		}
	}
	return nil
}

// Active reports whether key currently takes part in validation and
// payloads.
func (s *State) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.fields[key]
	return known && !s.inactive[key]
}

// Value returns the raw value of key.
func (s *State) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// String returns the value of a string field ("" for unknown keys).
func (s *State) String(key string) string {
	value, _ := s.Value(key)
	str, _ := value.(string)
	return str
}

// Bool returns the value of a boolean field (false for unknown keys).
func (s *State) Bool(key string) bool {
	value, _ := s.Value(key)
	b, _ := value.(bool)
	return b
}

// Values returns a copy of every raw value.
func (s *State) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.values)
}

// Reset restores default values, notifies watchers of changed fields and
// revalidates. Activation flags are left to the watchers (the fieldset
// controller re-applies the default mode).
func (s *State) Reset() bool {
	for _, field := range s.spec.Fields {
		s.store(field.Key, s.defaultValue(field))
	}
	return s.Revalidate()
}

// defaultValue is the value a field starts with and returns to on Reset. A
// discriminator without its own default takes the discriminator's.
func (s *State) defaultValue(field model.FieldSpec) any {
	if field.Kind.IsBoolean() {
		return strings.EqualFold(strings.TrimSpace(field.Default), "true")
	}
	if disc := s.spec.Discriminator; field.Default == "" && disc != nil && disc.Key == field.Key {
		return disc.Default
	}
	return field.Default
}

func coerce(field model.FieldSpec, raw any) (any, error) {
	if field.Kind.IsBoolean() {
		switch typed := raw.(type) {
		case bool:
			return typed, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(typed))
			if err != nil {
				return nil, fmt.Errorf("%w: %q expects a boolean, got %q", ErrKindMismatch, field.Key, typed)
			}
			return b, nil
		case nil:
			return false, nil
		default:
			return nil, fmt.Errorf("%w: %q expects a boolean, got %T", ErrKindMismatch, field.Key, raw)
		}
	}
	switch typed := raw.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case bool:
		return nil, fmt.Errorf("%w: %q expects a string, got a boolean", ErrKindMismatch, field.Key)
	default:
		return fmt.Sprint(typed), nil
	}
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
