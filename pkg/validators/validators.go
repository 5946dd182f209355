// Package validators holds the pure field predicates used by form state.
// Every predicate takes the raw control value and returns a bool; invalid or
// malformed input yields false and nothing here panics.
package validators

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	documentPattern = regexp.MustCompile(`^(\d{3}\.?\d{3}\.?\d{3}-?\d{2}|\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})$`)
	nonDigits       = regexp.MustCompile(`\D`)
	cepPattern      = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)
)

const (
	NameMinLength  = 3
	PhoneMinLength = 8
	CPFDigits      = 11
	CNPJDigits     = 14
)

// DocumentMode mirrors model.DocumentMode without importing it so the
// predicates stay dependency free.
type DocumentMode string

const (
	ModeCPF         DocumentMode = "cpf"
	ModeCNPJ        DocumentMode = "cnpj"
	ModeOptionalCPF DocumentMode = "optional-cpf"
)

// MinLength reports whether the trimmed value holds at least n characters.
func MinLength(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= n
}

// Name requires at least three characters after trimming.
func Name(value string) bool {
	return MinLength(value, NameMinLength)
}

// NotBlank reports whether the trimmed value is non-empty.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email checks local@domain.tld shape without whitespace in either part.
func Email(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// Digits strips every non-digit character.
func Digits(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

// Document validates a CPF or CNPJ by digit count and display pattern. There
// is no checksum verification: sequences such as all zeros are accepted.
func Document(value string, mode DocumentMode) bool {
	trimmed := strings.TrimSpace(value)
	digits := Digits(trimmed)

	switch mode {
	case ModeOptionalCPF:
		if digits == "" {
			return true
		}
		if len(digits) != CPFDigits {
			return false
		}
	case ModeCPF:
		if len(digits) != CPFDigits {
			return false
		}
	case ModeCNPJ:
		if len(digits) != CNPJDigits {
			return false
		}
	default:
		return false
	}
	return documentPattern.MatchString(trimmed)
}

// Phone requires at least eight characters after trimming.
func Phone(value string) bool {
	return MinLength(value, PhoneMinLength)
}

// CEP accepts 5 digits, an optional hyphen, and 3 digits.
func CEP(value string) bool {
	return cepPattern.MatchString(strings.TrimSpace(value))
}

// Date checks the literal YYYY-MM-DD shape only; calendar validity is not
// verified.
func Date(value string) bool {
	return datePattern.MatchString(strings.TrimSpace(value))
}

// Time checks the literal HH:MM shape.
func Time(value string) bool {
	return timePattern.MatchString(strings.TrimSpace(value))
}

// DateTime checks the YYYY-MM-DDTHH:MM shape of datetime-local controls.
func DateTime(value string) bool {
	return dateTimePattern.MatchString(strings.TrimSpace(value))
}

// TimeBefore reports whether start strictly precedes end. Both must be valid
// HH:MM values.
func TimeBefore(start, end string) bool {
	if !Time(start) || !Time(end) {
		return false
	}
	h1, m1 := splitClock(strings.TrimSpace(start))
	h2, m2 := splitClock(strings.TrimSpace(end))
	return h1 < h2 || (h1 == h2 && m1 < m2)
}

func splitClock(value string) (int, int) {
	hour, _ := strconv.Atoi(value[:2])
	minute, _ := strconv.Atoi(value[3:])
	return hour, minute
}

// DateOnOrBefore reports whether start <= end. Both must be valid YYYY-MM-DD
// values; for fixed-width dates string order equals calendar order.
func DateOnOrBefore(start, end string) bool {
	if !Date(start) || !Date(end) {
		return false
	}
	return strings.TrimSpace(start) <= strings.TrimSpace(end)
}

// NonNegative reports whether the value parses as a finite number >= 0.
func NonNegative(value string) bool {
	n, ok := parseNumber(value)
	return ok && n >= 0
}

// Positive reports whether the value parses as a finite number > 0.
func Positive(value string) bool {
	n, ok := parseNumber(value)
	return ok && n > 0
}

func parseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Consent is satisfied only by a checked box.
func Consent(checked bool) bool {
	return checked
}

// Choice reports whether the trimmed value is one of options.
func Choice(value string, options []string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	return slices.Contains(options, trimmed)
}
