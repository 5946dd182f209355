// Package submit turns a valid form state into one REST call and interprets
// the result. It owns the submit lock: the control is disabled and relabelled
// while a request is outstanding and a second submission is refused.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-hemoform/pkg/client"
	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
)

// Status classifies the end of a submission attempt.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusFailure        Status = "failure"
	StatusTransportError Status = "transport_error"
	StatusInvalid        Status = "invalid"
	StatusBlocked        Status = "blocked"
	StatusBusy           Status = "busy"
	StatusRejected       Status = "rejected"
)

const (
	DefaultSubmitLabel  = "ENVIAR"
	DefaultPendingLabel = "ENVIANDO..."

	MessageConnection   = "Erro de conexão com o servidor."
	MessageAuthRequired = "Você precisa estar logado para continuar."
	MessageInvalid      = "Verifique os campos destacados."
	MessageBusy         = "Aguarde o envio em andamento."
	MessageFailure      = "Não foi possível concluir o envio."
	MessageSuccess      = "Enviado com sucesso."
)

// Outcome is everything the caller needs to present the result. Err carries
// the underlying cause for transport errors and rejections.
type Outcome struct {
	Status   Status
	Message  string
	Mode     string
	Payload  map[string]any
	Response *client.Response
	Navigate string
	Refresh  string
	Err      error
}

// Transport sends one request; *client.Client implements it.
type Transport interface {
	Do(ctx context.Context, req client.Request) (client.Response, error)
}

// ModeSource reports the active discriminator mode; *fieldset.Controller
// implements it.
type ModeSource interface {
	Mode() string
}

// Control is the submit button.
type Control interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// Navigator moves the user elsewhere after a successful submission.
type Navigator interface {
	Navigate(target string)
}

// Refresher reloads a list after a successful submission.
type Refresher interface {
	Refresh(ctx context.Context, list string) error
}

// Notifier presents the outcome (alert, toast, terminal line).
type Notifier interface {
	Notify(outcome Outcome)
}

// Enricher adds values that do not come from the form, such as the signed-in
// user's id.
type Enricher interface {
	Enrich(ctx context.Context, payload map[string]any) error
}

// Checker validates a payload against the backend contract.
type Checker interface {
	Check(method, path string, payload map[string]any) error
}

// Option customises a Controller.
type Option func(*Controller)

func WithModeSource(src ModeSource) Option { return func(c *Controller) { c.modes = src } }
func WithControl(ctrl Control) Option      { return func(c *Controller) { c.control = ctrl } }
func WithNavigator(nav Navigator) Option   { return func(c *Controller) { c.navigator = nav } }
func WithRefresher(r Refresher) Option     { return func(c *Controller) { c.refresher = r } }
func WithNotifier(n Notifier) Option       { return func(c *Controller) { c.notifier = n } }
func WithEnricher(e Enricher) Option       { return func(c *Controller) { c.enricher = e } }
func WithChecker(chk Checker) Option       { return func(c *Controller) { c.checker = chk } }

// WithTokens sets where issued tokens are stored and where the auth
// requirement is checked.
func WithTokens(store client.TokenStore) Option {
	return func(c *Controller) { c.tokens = store }
}

// WithLogger sets the zap logger. Field values are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now (used for "$today" constants).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller submits one form. It is safe to call Submit from several
// goroutines; only one submission is in flight at a time.
type Controller struct {
	state     *formstate.State
	transport Transport

	modes     ModeSource
	control   Control
	navigator Navigator
	refresher Refresher
	notifier  Notifier
	enricher  Enricher
	checker   Checker
	tokens    client.TokenStore
	logger    *zap.Logger
	now       func() time.Time

	inFlight atomic.Bool
}

// New binds a controller to state and transport.
func New(state *formstate.State, transport Transport, options ...Option) (*Controller, error) {
	if state == nil {
		return nil, errors.New("submit: state is nil")
	}
	if transport == nil {
		return nil, errors.New("submit: transport is nil")
	}
	c := &Controller{
		state:     state,
		transport: transport,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.control != nil {
		c.control.SetLabel(c.submitLabel())
	}
	return c, nil
}

// InFlight reports whether a submission is outstanding.
func (c *Controller) InFlight() bool {
	return c.inFlight.Load()
}

// Submit runs one submission attempt. Every path ends in an Outcome; the
// error is reserved for misuse (nil context).
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	if ctx == nil {
		return Outcome{}, errors.New("submit: context is nil")
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return c.finish(Outcome{Status: StatusBusy, Message: MessageBusy}), nil
	}
	defer c.inFlight.Store(false)

	spec := c.state.Spec()
	snap := c.state.Snapshot()
	mode := c.mode(spec, snap)

	if !snap.Allowed {
		return c.finish(Outcome{Status: StatusInvalid, Message: MessageInvalid, Mode: mode}), nil
	}
	if spec.RequiresAuth && (c.tokens == nil || c.tokens.Token() == "") {
		return c.finish(Outcome{Status: StatusBlocked, Message: MessageAuthRequired, Mode: mode}), nil
	}

	endpoint, ok := spec.Endpoint(mode)
	if !ok {
		return c.finish(Outcome{
			Status:  StatusRejected,
			Message: MessageFailure,
			Mode:    mode,
			Err:     fmt.Errorf("submit: form %q has no endpoint for mode %q", spec.ID, mode),
		}), nil
	}

	// The control is released before finish notifies.
	c.lock(spec)
	out := func() Outcome {
		defer c.release()
		return c.deliver(ctx, spec, snap, mode, endpoint)
	}()
	return c.finish(out), nil
}

// deliver runs the locked part of a submission: payload, enrichment,
// contract check, transport and the success actions.
func (c *Controller) deliver(ctx context.Context, spec model.FormSpec, snap formstate.Snapshot, mode string, endpoint model.Endpoint) Outcome {
	payload := BuildPayload(spec, snap, c.now())
	out := Outcome{Mode: mode, Payload: payload}

	if c.enricher != nil {
		if err := c.enricher.Enrich(ctx, payload); err != nil {
			out.Status = StatusFailure
			out.Message = pick(spec.FailureMessage, MessageFailure)
			out.Err = err
			return out
		}
	}

	if c.checker != nil {
		if err := c.checker.Check(endpoint.HTTPMethod(), endpoint.Path, payload); err != nil {
			out.Status = StatusRejected
			out.Message = pick(spec.FailureMessage, MessageFailure)
			out.Err = err
			return out
		}
	}

	resp, err := c.transport.Do(ctx, client.Request{
		Method: endpoint.HTTPMethod(),
		Path:   endpoint.Path,
		Body:   payload,
	})
	if err != nil {
		out.Status = StatusTransportError
		out.Message = MessageConnection
		out.Err = err
		return out
	}
	out.Response = &resp

	if !resp.OK() {
		out.Status = StatusFailure
		out.Message = pick(resp.Message, pick(spec.FailureMessage, MessageFailure))
		return out
	}

	out.Status = StatusSuccess
	out.Message = pick(resp.Message, pick(spec.SuccessMessage, MessageSuccess))
	if resp.Token != "" && c.tokens != nil {
		if err := c.tokens.SetToken(resp.Token); err != nil {
			c.logger.Warn("token not stored", zap.String("form", spec.ID), zap.Error(err))
		}
	}

	c.state.Reset()

	if target := spec.OnSuccess.NavigateTo(mode); target != "" {
		out.Navigate = target
		if c.navigator != nil {
			c.navigator.Navigate(target)
		}
	} else if list := spec.OnSuccess.Refresh; list != "" {
		out.Refresh = list
		if c.refresher != nil {
			if err := c.refresher.Refresh(ctx, list); err != nil {
				c.logger.Warn("refresh failed", zap.String("form", spec.ID), zap.String("list", list), zap.Error(err))
			}
		}
	}
	return out
}

func (c *Controller) mode(spec model.FormSpec, snap formstate.Snapshot) string {
	if c.modes != nil {
		return c.modes.Mode()
	}
	if spec.Discriminator != nil {
		mode, _ := snap.Values[spec.Discriminator.Key].(string)
		return mode
	}
	return ""
}

func (c *Controller) lock(spec model.FormSpec) {
	if c.control == nil {
		return
	}
	c.control.SetEnabled(false)
	c.control.SetLabel(pick(spec.PendingLabel, DefaultPendingLabel))
}

func (c *Controller) release() {
	if c.control == nil {
		return
	}
	c.control.SetLabel(c.submitLabel())
	c.control.SetEnabled(c.state.SubmitAllowed())
}

func (c *Controller) submitLabel() string {
	return pick(c.state.Spec().SubmitLabel, DefaultSubmitLabel)
}

func (c *Controller) finish(out Outcome) Outcome {
	fields := []zap.Field{
		zap.String("form", c.state.Spec().ID),
		zap.String("status", string(out.Status)),
	}
	if out.Mode != "" {
		fields = append(fields, zap.String("mode", out.Mode))
	}
	if out.Response != nil {
		fields = append(fields, zap.Int("http_status", out.Response.StatusCode))
	}
	switch out.Status {
	case StatusSuccess:
		c.logger.Info("submission finished", fields...)
	case StatusTransportError, StatusRejected:
		c.logger.Warn("submission failed", append(fields, zap.Error(out.Err))...)
	default:
		c.logger.Debug("submission finished", fields...)
	}
	if c.notifier != nil {
		c.notifier.Notify(out)
	}
	return out
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
