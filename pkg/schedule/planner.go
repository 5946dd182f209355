// Package schedule stages a blood center's weekly operating hours before
// sending them to the backend one entry per request.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-hemoform/pkg/client"
	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/submit"
)

// Field keys of the entry form.
const (
	FieldWeekday = "dia_semana"
	FieldOpening = "horario_abertura"
	FieldClosing = "horario_fechamento"
	FieldNote    = "observacao"
)

// DefaultConcurrency bounds how many entries are posted at once.
const DefaultConcurrency = 4

// Weekdays holds the pt-BR weekday names indexed like dia_semana (0 is
// Sunday).
var Weekdays = [7]string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

var (
	ErrInvalidEntry  = errors.New("schedule: invalid entry")
	ErrNothingStaged = errors.New("schedule: nothing staged")
	ErrAuthRequired  = errors.New("schedule: authentication required")
)

// DuplicateDayError reports a weekday that is already staged.
type DuplicateDayError struct {
	Weekday int
}

func (e DuplicateDayError) Error() string {
	return fmt.Sprintf("schedule: %s already staged", WeekdayName(e.Weekday))
}

// Message returns the pt-BR text shown for err.
func Message(err error) string {
	var dup DuplicateDayError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &dup):
		return WeekdayName(dup.Weekday) + " já foi adicionado"
	case errors.Is(err, ErrInvalidEntry):
		return "Verifique os dados antes de continuar."
	case errors.Is(err, ErrNothingStaged):
		return "Adicione pelo menos um horário."
	case errors.Is(err, ErrAuthRequired):
		return "Você precisa estar logado para continuar."
	default:
		return "Erro de conexão com o servidor."
	}
}

// WeekdayName returns the name of day, or "" when out of range.
func WeekdayName(day int) string {
	if day < 0 || day >= len(Weekdays) {
		return ""
	}
	return Weekdays[day]
}

// Entry is one staged weekday. The request body is built when the entry is
// staged, with the entry form's transforms and constants applied.
type Entry struct {
	Weekday int    `json:"dia_semana"`
	Opening string `json:"horario_abertura"`
	Closing string `json:"horario_fechamento"`
	Note    string `json:"observacao"`

	body map[string]any
}

// Report summarises a batch submission.
type Report struct {
	Saved   int
	Failed  int
	Message string
}

// Transport sends one request; *client.Client implements it.
type Transport interface {
	Do(ctx context.Context, req client.Request) (client.Response, error)
}

// Option customises a Planner.
type Option func(*Planner)

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithTokens enables the authentication check for forms that require it.
func WithTokens(store client.TokenStore) Option {
	return func(p *Planner) { p.tokens = store }
}

// WithClock overrides time.Now (used for "$today" constants).
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Planner owns the staged list. Each planner has its own list; nothing is
// shared between instances.
type Planner struct {
	entry     *formstate.State
	transport Transport
	tokens    client.TokenStore
	logger    *zap.Logger
	now       func() time.Time
	limit     int

	mu      sync.Mutex
	entries []Entry
}

// New binds a planner to the entry form state (the "horario" form) and the
// transport used by Submit.
func New(entry *formstate.State, transport Transport, options ...Option) (*Planner, error) {
	if entry == nil {
		return nil, errors.New("schedule: entry state is nil")
	}
	if transport == nil {
		return nil, errors.New("schedule: transport is nil")
	}
	for _, key := range []string{FieldWeekday, FieldOpening, FieldClosing} {
		if _, ok := entry.Spec().Field(key); !ok {
			return nil, fmt.Errorf("schedule: entry form %q lacks field %q", entry.Spec().ID, key)
		}
	}
	if _, ok := entry.Spec().Endpoint(""); !ok {
		return nil, fmt.Errorf("schedule: entry form %q has no endpoint", entry.Spec().ID)
	}

	p := &Planner{
		entry:     entry,
		transport: transport,
		logger:    zap.NewNop(),
		now:       time.Now,
		limit:     DefaultConcurrency,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p, nil
}

// Add stages the entry currently held by the entry form and clears the form.
func (p *Planner) Add() (Entry, error) {
	snap := p.entry.Snapshot()
	if !snap.Allowed {
		return Entry{}, ErrInvalidEntry
	}
	day, err := strconv.Atoi(strings.TrimSpace(stringValue(snap.Values, FieldWeekday)))
	if err != nil || WeekdayName(day) == "" {
		return Entry{}, ErrInvalidEntry
	}

	body := submit.BuildPayload(p.entry.Spec(), snap, p.now())
	entry := Entry{
		Weekday: day,
		Opening: stringValue(body, FieldOpening),
		Closing: stringValue(body, FieldClosing),
		Note:    stringValue(body, FieldNote),
		body:    body,
	}

	p.mu.Lock()
	if slices.ContainsFunc(p.entries, func(e Entry) bool { return e.Weekday == day }) {
		p.mu.Unlock()
		return Entry{}, DuplicateDayError{Weekday: day}
	}
	p.entries = append(p.entries, entry)
	slices.SortFunc(p.entries, func(a, b Entry) int { return a.Weekday - b.Weekday })
	p.mu.Unlock()

	p.entry.Reset()
	return entry, nil
}

// Remove drops the entry at index i (in weekday order).
func (p *Planner) Remove(i int) (Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.entries) {
		return Entry{}, fmt.Errorf("schedule: index %d out of range", i)
	}
	removed := p.entries[i]
	p.entries = slices.Delete(p.entries, i, i+1)
	return removed, nil
}

// Entries returns a copy of the staged list.
func (p *Planner) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.entries)
}

// Submit posts every staged entry. The list is cleared only when all of them
// succeed; otherwise it is kept so the user can retry.
func (p *Planner) Submit(ctx context.Context) (Report, error) {
	spec := p.entry.Spec()
	if spec.RequiresAuth && (p.tokens == nil || p.tokens.Token() == "") {
		return Report{}, ErrAuthRequired
	}
	entries := p.Entries()
	if len(entries) == 0 {
		return Report{}, ErrNothingStaged
	}
	endpoint, _ := spec.Endpoint("")

	var saved, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(p.limit)
	for _, entry := range entries {
		g.Go(func() error {
			resp, err := p.transport.Do(ctx, client.Request{
				Method: endpoint.HTTPMethod(),
				Path:   endpoint.Path,
				Body:   maps.Clone(entry.body),
			})
			if err != nil || !resp.OK() {
				failed.Add(1)
				p.logger.Warn("operating hours entry failed",
					zap.String("weekday", WeekdayName(entry.Weekday)),
					zap.Int("status", resp.StatusCode),
					zap.Error(err))
				return nil
			}
			saved.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Saved: int(saved.Load()), Failed: int(failed.Load())}
	if report.Failed > 0 {
		report.Message = fmt.Sprintf("%d horário(s) salvos, %d falharam.", report.Saved, report.Failed)
		return report, nil
	}

	report.Message = "Todos os horários cadastrados com sucesso!"
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
	p.entry.Reset()
	return report, nil
}

func stringValue(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}
