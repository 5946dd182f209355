package submit

import (
	"html"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/model"
	"github.com/goliatone/go-hemoform/pkg/validators"
)

// ConstantToday is replaced by the submission date in form constants.
const ConstantToday = "$today"

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips every tag from free text, keeping the readable
// content.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

// BuildPayload maps the active fields of a snapshot onto a request body. It
// never reads inactive fields, so values typed into a hidden fieldset do not
// leak into the request.
func BuildPayload(spec model.FormSpec, snap formstate.Snapshot, now time.Time) map[string]any {
	payload := make(map[string]any, len(spec.Fields)+len(spec.Constants))
	for _, field := range spec.Fields {
		if !snap.Active[field.Key] {
			continue
		}
		name := field.PayloadName()
		if name == "" {
			continue
		}
		value, ok := transform(field, snap.Values[field.Key])
		if !ok {
			continue
		}
		if field.OmitEmpty && isEmpty(value) {
			continue
		}
		payload[name] = value
	}
	for key, value := range spec.Constants {
		if s, ok := value.(string); ok && s == ConstantToday {
			value = now.Format("2006-01-02")
		}
		payload[key] = value
	}
	return payload
}

// transform converts a raw control value. The second result is false when
// the field must be left out of the payload.
func transform(field model.FieldSpec, raw any) (any, bool) {
	if field.Kind.IsBoolean() {
		b, _ := raw.(bool)
		return b, true
	}
	value, _ := raw.(string)

	mode := field.Transform
	if mode == model.TransformDefault {
		mode = defaultTransform(field.Kind)
	}

	switch mode {
	case model.TransformRaw:
		return value, true
	case model.TransformDigits:
		digits := validators.Digits(value)
		// An optional CPF is only sent when complete.
		if field.Kind == model.KindDocument && field.Document == model.DocumentOptionalCPF && len(digits) != validators.CPFDigits {
			return nil, false
		}
		return digits, true
	case model.TransformNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, !field.OmitEmpty
		}
		return n, true
	case model.TransformInteger:
		trimmed := strings.TrimSpace(value)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, !field.OmitEmpty
		}
		return int(math.Trunc(f)), true
	case model.TransformSanitize:
		return sanitizeText(value), true
	default:
		return strings.TrimSpace(value), true
	}
}

func defaultTransform(kind model.Kind) model.Transform {
	switch kind {
	case model.KindDocument:
		return model.TransformDigits
	case model.KindNumeric:
		return model.TransformNumber
	case model.KindPassword, model.KindPasswordConfirm:
		return model.TransformRaw
	default:
		return model.TransformTrim
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}
