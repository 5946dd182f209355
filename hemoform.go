// Package hemoform wires the form engine together: one Form bundles the
// validation state, the fieldset controller (for forms with a discriminator)
// and the submission controller.
package hemoform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-hemoform/pkg/definitions"
	"github.com/goliatone/go-hemoform/pkg/fieldset"
	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
	"github.com/goliatone/go-hemoform/pkg/strength"
	"github.com/goliatone/go-hemoform/pkg/submit"
)

// FormSpec aliases model.FormSpec for callers that only import the root
// package.
type FormSpec = model.FormSpec

// Outcome aliases submit.Outcome.
type Outcome = submit.Outcome

// Option configures NewForm.
type Option func(*formOptions)

type formOptions struct {
	state     []formstate.Option
	fieldsets []fieldset.Option
	submit    []submit.Option
}

// WithStateOptions forwards options to formstate.New.
func WithStateOptions(opts ...formstate.Option) Option {
	return func(o *formOptions) { o.state = append(o.state, opts...) }
}

// WithFieldsetOptions forwards options to fieldset.New. They are ignored for
// forms without a discriminator.
func WithFieldsetOptions(opts ...fieldset.Option) Option {
	return func(o *formOptions) { o.fieldsets = append(o.fieldsets, opts...) }
}

// WithSubmitOptions forwards options to submit.New.
func WithSubmitOptions(opts ...submit.Option) Option {
	return func(o *formOptions) { o.submit = append(o.submit, opts...) }
}

// Form is a ready to use form instance.
type Form struct {
	State     *formstate.State
	Fieldsets *fieldset.Controller // nil without a discriminator
	Submitter *submit.Controller
}

// NewForm builds the state, fieldset and submission controllers for spec.
// The fieldset controller is registered as the submitter's mode source.
func NewForm(spec FormSpec, transport submit.Transport, options ...Option) (*Form, error) {
	cfg := &formOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	state, err := formstate.New(spec, cfg.state...)
	if err != nil {
		return nil, err
	}
	form := &Form{State: state}

	submitOpts := cfg.submit
	if spec.Discriminator != nil {
		form.Fieldsets, err = fieldset.New(state, cfg.fieldsets...)
		if err != nil {
			return nil, err
		}
		submitOpts = append([]submit.Option{submit.WithModeSource(form.Fieldsets)}, submitOpts...)
	}

	form.Submitter, err = submit.New(state, transport, submitOpts...)
	if err != nil {
		return nil, err
	}
	return form, nil
}

// LoadForm looks id up in store and builds it with NewForm.
func LoadForm(store *definitions.Store, id string, transport submit.Transport, options ...Option) (*Form, error) {
	if store == nil {
		return nil, fmt.Errorf("hemoform: definitions store is nil")
	}
	spec, ok := store.Form(id)
	if !ok {
		return nil, fmt.Errorf("hemoform: unknown form %q", id)
	}
	return NewForm(spec, transport, options...)
}

// Mode returns the active discriminator mode, or "" for single-mode forms.
func (f *Form) Mode() string {
	if f.Fieldsets == nil {
		return ""
	}
	return f.Fieldsets.Mode()
}

// Fill stores values and reports whether submission is allowed.
func (f *Form) Fill(values map[string]any) (bool, error) {
	return f.State.Fill(values)
}

// Submit runs one submission attempt.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	return f.Submitter.Submit(ctx)
}

// Score evaluates a password with the strength scorer.
func Score(password string) strength.PasswordStrength {
	return strength.Evaluate(password)
}
