package formstate

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-hemoform/pkg/model"
	"github.com/goliatone/go-hemoform/pkg/strength"
	"github.com/goliatone/go-hemoform/pkg/validators"
)

const (
	MessageConfirmEmpty    = "Repita a senha"
	MessageConfirmMismatch = "Senhas não coincidem"
	MessageConfirmMatch    = "Senhas conferem"
	MessageConsent         = "Marque para continuar."
	MessageCPF             = "CPF inválido ou incompleto (11 dígitos numéricos)."
	MessageCNPJ            = "CNPJ inválido ou incompleto (14 dígitos numéricos)."
	MessageEmail           = "E-mail inválido."
	MessagePhone           = "Telefone inválido."
	MessageCEP             = "CEP inválido."
	MessageDate            = "Data inválida."
	MessageTime            = "Horário inválido."
	MessageDateTime        = "Data e hora inválidas."
	MessageNumber          = "Informe um número válido."
	MessagePositive        = "Informe um número maior que zero."
	MessageChoice          = "Selecione uma opção."
	MessageDateRange       = "A data final deve ser igual ou posterior à inicial."
	MessageTimeRange       = "O fechamento deve ser posterior à abertura."
)

// Revalidate recomputes every field from the current values, refreshes the
// bound view and returns whether submission is allowed.
func (s *State) Revalidate() bool {
	s.mu.Lock()
	results, allowed := s.revalidateLocked()
	view := s.view
	s.mu.Unlock()

	push(view, results, allowed)
	return allowed
}

// Snapshot is a consistent view of the form taken under a single
// revalidation.
type Snapshot struct {
	Values  map[string]any
	Active  map[string]bool
	Results []model.ValidationResult
	Allowed bool
}

// Snapshot revalidates and returns values, activation and results captured
// together, so concurrent input cannot slip between the check and the read.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	results, allowed := s.revalidateLocked()
	snap := Snapshot{
		Values:  cloneValues(s.values),
		Active:  make(map[string]bool, len(s.spec.Fields)),
		Results: results,
		Allowed: allowed,
	}
	for _, field := range s.spec.Fields {
		snap.Active[field.Key] = !s.inactive[field.Key]
	}
	view := s.view
	s.mu.Unlock()

	push(view, results, allowed)
	return snap
}

// SubmitAllowed returns the value computed by the last revalidation.
func (s *State) SubmitAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowed
}

// Blocking reports whether the last result of key prevents submission. An
// optional field with invalid content shows its message but does not block.
func (s *State) Blocking(key string) bool {
	field, ok := s.fields[key]
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.results[key]
	return result.Active && !result.Valid && blocks(field)
}

// Result returns the last validation result of key.
func (s *State) Result(key string) (model.ValidationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[key]
	return result, ok
}

// Results returns the last validation results in field order.
func (s *State) Results() []model.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ValidationResult, 0, len(s.spec.Fields))
	for _, field := range s.spec.Fields {
		out = append(out, s.results[field.Key])
	}
	return out
}

// Feedback returns the UI binding of the last result of key.
func (s *State) Feedback(key string) (model.Feedback, bool) {
	result, ok := s.Result(key)
	if !ok {
		return model.Feedback{}, false
	}
	return model.FeedbackFor(result), true
}

func push(view View, results []model.ValidationResult, allowed bool) {
	if view == nil {
		return
	}
	for _, result := range results {
		view.ApplyFeedback(model.FeedbackFor(result))
	}
	view.SetSubmitEnabled(allowed)
}

func (s *State) revalidateLocked() ([]model.ValidationResult, bool) {
	results := make([]model.ValidationResult, 0, len(s.spec.Fields))
	allowed := true
	for _, field := range s.spec.Fields {
		result := s.validateField(field)
		s.results[field.Key] = result
		results = append(results, result)
		if result.Active && !result.Valid && blocks(field) {
			allowed = false
		}
	}
	s.allowed = allowed
	return results, allowed
}

// blocks reports whether an invalid result of field prevents submission.
// Confirmation fields always gate when active.
func blocks(field model.FieldSpec) bool {
	return field.Required || field.Kind == model.KindPasswordConfirm
}

func (s *State) validateField(field model.FieldSpec) model.ValidationResult {
	result := model.ValidationResult{Key: field.Key, Active: true, Valid: true}
	if s.inactive[field.Key] {
		result.Active = false
		return result
	}

	if field.Kind.IsBoolean() {
		checked, _ := s.values[field.Key].(bool)
		if !checked && !field.Required {
			return result
		}
		result.Valid = validators.Consent(checked)
		if !result.Valid {
			result.Message = pick(field.Messages.Invalid, MessageConsent)
		}
		return result
	}

	value, _ := s.values[field.Key].(string)

	if field.Kind == model.KindPasswordConfirm {
		return s.validateConfirm(field, value, result)
	}

	if !validators.NotBlank(value) {
		if !field.Required {
			return result
		}
		if field.Messages.Empty != "" {
			result.Valid = false
			result.Message = field.Messages.Empty
			return result
		}
	}

	if field.Kind == model.KindPassword {
		score := strength.Evaluate(value)
		result.Strength = &score
		result.Valid = score.Eligible()
		result.Message = score.Label()
		if !result.Valid && field.Messages.Invalid != "" {
			result.Message = field.Messages.Invalid
		}
		return result
	}

	ok, message := checkKind(field, value)
	if ok && field.After != "" {
		ok, message = s.checkRange(field, value)
	}
	result.Valid = ok
	if ok {
		result.Message = field.Messages.Valid
	} else {
		result.Message = pick(field.Messages.Invalid, message)
	}
	return result
}

func (s *State) validateConfirm(field model.FieldSpec, value string, result model.ValidationResult) model.ValidationResult {
	target, _ := s.values[field.Confirms].(string)
	switch {
	case strings.TrimSpace(value) == "":
		result.Valid = false
		result.Message = pick(field.Messages.Empty, MessageConfirmEmpty)
	case value != target:
		result.Valid = false
		result.Message = pick(field.Messages.Invalid, MessageConfirmMismatch)
	default:
		result.Message = pick(field.Messages.Valid, MessageConfirmMatch)
	}
	return result
}

func (s *State) checkRange(field model.FieldSpec, end string) (bool, string) {
	if s.inactive[field.After] {
		return true, ""
	}
	start, _ := s.values[field.After].(string)
	switch field.Kind {
	case model.KindDate:
		return validators.DateOnOrBefore(start, end), MessageDateRange
	case model.KindTime:
		return validators.TimeBefore(start, end), MessageTimeRange
	default:
		return true, ""
	}
}

func checkKind(field model.FieldSpec, value string) (bool, string) {
	switch field.Kind {
	case model.KindText:
		n := field.MinTextLength()
		return validators.MinLength(value, n), fmt.Sprintf("Informe ao menos %d caracteres.", n)
	case model.KindEmail:
		return validators.Email(value), MessageEmail
	case model.KindDocument:
		mode := validators.DocumentMode(field.Document)
		if field.Document == model.DocumentCNPJ {
			return validators.Document(value, mode), MessageCNPJ
		}
		return validators.Document(value, mode), MessageCPF
	case model.KindPhone:
		return validators.Phone(value), MessagePhone
	case model.KindCEP:
		return validators.CEP(value), MessageCEP
	case model.KindDate:
		return validators.Date(value), MessageDate
	case model.KindTime:
		return validators.Time(value), MessageTime
	case model.KindDateTime:
		return validators.DateTime(value), MessageDateTime
	case model.KindNumeric:
		if field.Positive {
			return validators.Positive(value), MessagePositive
		}
		return validators.NonNegative(value), MessageNumber
	case model.KindChoice:
		return validators.Choice(value, field.Options), MessageChoice
	default:
		return true, ""
	}
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
