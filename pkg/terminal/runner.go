// Package terminal drives a form from an interactive terminal: every answer
// goes through the form state, invalid answers are re-asked with the inline
// message, and the discriminator is routed through the fieldset controller.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-hemoform/pkg/fieldset"
	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
	"github.com/goliatone/go-hemoform/pkg/submit"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("terminal: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of attempts.
	ErrTooManyAttempts = errors.New("terminal: too many invalid answers")
)

// DefaultMaxAttempts is how often an invalid answer is re-asked.
const DefaultMaxAttempts = 3

// Theme holds optional prefixes for printed lines.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Submitter is satisfied by *submit.Controller.
type Submitter interface {
	Submit(ctx context.Context) (submit.Outcome, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies line prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// Runner asks for every active field of a form.
type Runner struct {
	driver      PromptDriver
	theme       Theme
	maxAttempts int
}

// NewRunner returns a runner using the survey driver unless overridden.
func NewRunner(options ...Option) *Runner {
	r := &Runner{
		maxAttempts: DefaultMaxAttempts,
		theme:       Theme{ErrorPrefix: "✗ ", InfoPrefix: "• "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Fill prompts every field in spec order, skipping fields the current mode
// deactivates. modes may be nil for forms without a discriminator. It
// returns whether submission is allowed afterwards.
func (r *Runner) Fill(ctx context.Context, state *formstate.State, modes *fieldset.Controller) (bool, error) {
	spec := state.Spec()
	discKey := ""
	if spec.Discriminator != nil && modes != nil {
		discKey = spec.Discriminator.Key
	}

	for _, field := range spec.Fields {
		if !state.Active(field.Key) {
			continue
		}
		var err error
		if field.Key == discKey {
			err = r.askMode(ctx, field, state, modes)
		} else {
			err = r.askField(ctx, field, state)
		}
		if err != nil {
			return false, err
		}
	}
	return state.Revalidate(), nil
}

// Run fills the form, asks for confirmation and submits. The outcome message
// is printed; the outcome is returned for callers that need the status.
func (r *Runner) Run(ctx context.Context, state *formstate.State, modes *fieldset.Controller, submitter Submitter) (submit.Outcome, error) {
	allowed, err := r.Fill(ctx, state, modes)
	if err != nil {
		return submit.Outcome{}, err
	}
	if !allowed {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+submit.MessageInvalid)
		return submit.Outcome{Status: submit.StatusInvalid, Message: submit.MessageInvalid}, nil
	}

	label := state.Spec().SubmitLabel
	if label == "" {
		label = submit.DefaultSubmitLabel
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label + "?", Default: true})
	if err != nil {
		return submit.Outcome{}, err
	}
	if !ok {
		return submit.Outcome{}, ErrAborted
	}

	out, err := submitter.Submit(ctx)
	if err != nil {
		return out, err
	}
	prefix := r.theme.InfoPrefix
	if out.Status != submit.StatusSuccess {
		prefix = r.theme.ErrorPrefix
	}
	_ = r.driver.Info(ctx, prefix+out.Message)
	return out, nil
}

func (r *Runner) askMode(ctx context.Context, field model.FieldSpec, state *formstate.State, modes *fieldset.Controller) error {
	options := modes.Modes()
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      options,
		DefaultIndex: slices.Index(options, modes.Mode()),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("terminal: no mode selected for %q", field.Key)
	}
	_, err = modes.Select(options[idx])
	return err
}

func (r *Runner) askField(ctx context.Context, field model.FieldSpec, state *formstate.State) error {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := r.ask(ctx, field, state); err != nil {
			return err
		}
		result, _ := state.Result(field.Key)
		if result.Strength != nil {
			_ = r.driver.Info(ctx, r.theme.InfoPrefix+result.Strength.Label())
		}
		if result.Valid {
			return nil
		}
		if result.Message != "" && result.Strength == nil {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+result.Message)
		}
		if !state.Blocking(field.Key) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Key)
}

func (r *Runner) ask(ctx context.Context, field model.FieldSpec, state *formstate.State) error {
	label := field.DisplayLabel()
	switch {
	case field.Kind.IsBoolean():
		value, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: state.Bool(field.Key)})
		if err != nil {
			return err
		}
		_, err = state.SetBool(field.Key, value)
		return err
	case field.Kind == model.KindChoice:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: slices.Index(field.Options, state.String(field.Key)),
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(field.Options) {
			value = field.Options[idx]
		}
		_, err = state.Set(field.Key, value)
		return err
	case field.Secret || field.Kind == model.KindPassword || field.Kind == model.KindPasswordConfirm:
		value, err := r.driver.Password(ctx, InputConfig{Message: label})
		if err != nil {
			return err
		}
		_, err = state.Set(field.Key, value)
		return err
	default:
		value, err := r.driver.Input(ctx, InputConfig{Message: label, Default: state.String(field.Key)})
		if err != nil {
			return err
		}
		_, err = state.Set(field.Key, value)
		return err
	}
}
