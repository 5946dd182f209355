package model

import "github.com/goliatone/go-hemoform/pkg/strength"

// ValidationResult is the outcome of validating one field. At most one
// message is carried at a time: the error text when invalid, a neutral or
// confirming text when valid.
type ValidationResult struct {
	Key      string                     `json:"key"`
	Valid    bool                       `json:"valid"`
	Active   bool                       `json:"active"`
	Message  string                     `json:"message,omitempty"`
	Strength *strength.PasswordStrength `json:"strength,omitempty"`
}

// Feedback is the UI binding of a ValidationResult: a CSS state class and
// the aria-invalid attribute value alongside the message.
type Feedback struct {
	Key         string `json:"key"`
	Valid       bool   `json:"valid"`
	Message     string `json:"message,omitempty"`
	Class       string `json:"class"`
	AriaInvalid string `json:"ariaInvalid"`
}

const (
	ClassOK    = "ok"
	ClassError = "erro"
)

// FeedbackFor derives the feedback of a result.
func FeedbackFor(result ValidationResult) Feedback {
	fb := Feedback{
		Key:         result.Key,
		Valid:       result.Valid,
		Message:     result.Message,
		Class:       ClassOK,
		AriaInvalid: "false",
	}
	if !result.Valid {
		fb.Class = ClassError
		fb.AriaInvalid = "true"
	}
	return fb
}
