package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-hemoform/pkg/definitions"
	"github.com/goliatone/go-hemoform/pkg/fieldset"
	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/submit"
)

type stubDriver struct {
	inputs    []string
	passwords []string
	confirm   []bool
	selectIdx []int

	inputPos, passPos, confirmPos, selectPos int

	infoMessages []string
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, ErrAborted
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type stubSubmitter struct {
	out   submit.Outcome
	calls int
}

func (s *stubSubmitter) Submit(context.Context) (submit.Outcome, error) {
	s.calls++
	return s.out, nil
}

func registration(t *testing.T) (*formstate.State, *fieldset.Controller) {
	t.Helper()
	store, err := definitions.Default()
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	spec, _ := store.Form("cadastro")
	state, err := formstate.New(spec)
	if err != nil {
		t.Fatalf("formstate: %v", err)
	}
	modes, err := fieldset.New(state)
	if err != nil {
		t.Fatalf("fieldset: %v", err)
	}
	return state, modes
}

func collaboratorScript() *stubDriver {
	return &stubDriver{
		selectIdx: []int{1},
		inputs: []string{
			"Hemocentro Central",
			"contato@hemo",
			"contato@hemo.org",
			"11 3333-4444",
			"11.222.333/0001-81",
			"",
		},
		passwords: []string{"Secret123", "Secret123"},
		confirm:   []bool{true},
	}
}

func TestFillCollaboratorSkipsDonorFields(t *testing.T) {
	state, modes := registration(t)
	driver := collaboratorScript()
	runner := NewRunner(WithPromptDriver(driver), WithTheme(Theme{}))

	allowed, err := runner.Fill(context.Background(), state, modes)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed, results %+v", state.Results())
	}
	if modes.Mode() != "hemocentro" {
		t.Fatalf("expected hemocentro mode, got %q", modes.Mode())
	}
	if state.String("cnpj_colaborador") != "11.222.333/0001-81" {
		t.Fatalf("unexpected cnpj %q", state.String("cnpj_colaborador"))
	}
	want := []string{"E-mail inválido.", "Senha forte"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFillTooManyAttempts(t *testing.T) {
	state, modes := registration(t)
	driver := &stubDriver{
		selectIdx: []int{0},
		inputs:    []string{"Maria", "x", "y"},
	}
	runner := NewRunner(WithPromptDriver(driver), WithMaxAttempts(2))

	_, err := runner.Fill(context.Background(), state, modes)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFillAcceptsOptionalFieldWithInvalidContent(t *testing.T) {
	store, err := definitions.Default()
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	spec, _ := store.Form("horario")
	state, err := formstate.New(spec)
	if err != nil {
		t.Fatalf("formstate: %v", err)
	}
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"08:00", "17:00", "ok"},
	}
	runner := NewRunner(WithPromptDriver(driver), WithTheme(Theme{}), WithMaxAttempts(1))

	allowed, err := runner.Fill(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !allowed {
		t.Fatalf("optional note must not block, results %+v", state.Results())
	}
	if state.String("observacao") != "ok" {
		t.Fatalf("unexpected note %q", state.String("observacao"))
	}
	want := []string{"Informe ao menos 3 caracteres."}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSubmitsAfterConfirmation(t *testing.T) {
	state, modes := registration(t)
	driver := collaboratorScript()
	driver.confirm = append(driver.confirm, true)
	submitter := &stubSubmitter{out: submit.Outcome{Status: submit.StatusSuccess, Message: "Cadastro realizado"}}
	runner := NewRunner(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "> "}))

	out, err := runner.Run(context.Background(), state, modes, submitter)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Status != submit.StatusSuccess || submitter.calls != 1 {
		t.Fatalf("unexpected outcome %+v (calls %d)", out, submitter.calls)
	}
	if last := driver.infoMessages[len(driver.infoMessages)-1]; last != "> Cadastro realizado" {
		t.Fatalf("unexpected last message %q", last)
	}
}

func TestRunAbortedAtConfirmation(t *testing.T) {
	state, modes := registration(t)
	driver := collaboratorScript()
	driver.confirm = append(driver.confirm, false)
	submitter := &stubSubmitter{}
	runner := NewRunner(WithPromptDriver(driver))

	_, err := runner.Run(context.Background(), state, modes, submitter)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if submitter.calls != 0 {
		t.Fatalf("submitter must not be called")
	}
}
