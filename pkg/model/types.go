package model

// Kind enumerates the data kinds a field can hold. Each kind maps onto one
// predicate in pkg/validators.
type Kind string

const (
	KindText            Kind = "text"
	KindEmail           Kind = "email"
	KindPassword        Kind = "password"
	KindPasswordConfirm Kind = "password-confirm"
	KindDocument        Kind = "document"
	KindPhone           Kind = "phone"
	KindCEP             Kind = "cep"
	KindDate            Kind = "date"
	KindTime            Kind = "time"
	KindDateTime        Kind = "datetime"
	KindNumeric         Kind = "numeric"
	KindBoolean         Kind = "boolean"
	KindChoice          Kind = "choice"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindEmail, KindPassword, KindPasswordConfirm, KindDocument,
		KindPhone, KindCEP, KindDate, KindTime, KindDateTime, KindNumeric,
		KindBoolean, KindChoice:
		return true
	default:
		return false
	}
}

// IsBoolean reports whether values of this kind are booleans rather than
// strings.
func (k Kind) IsBoolean() bool {
	return k == KindBoolean
}

// DocumentMode selects the CPF/CNPJ rule applied to a document field.
type DocumentMode string

const (
	DocumentCPF         DocumentMode = "cpf"
	DocumentCNPJ        DocumentMode = "cnpj"
	DocumentOptionalCPF DocumentMode = "optional-cpf"
)

// Valid reports whether m is a known document mode.
func (m DocumentMode) Valid() bool {
	switch m {
	case DocumentCPF, DocumentCNPJ, DocumentOptionalCPF:
		return true
	default:
		return false
	}
}

// Transform names a payload transformation applied when a field value is
// copied into a request body.
type Transform string

const (
	TransformDefault  Transform = ""
	TransformTrim     Transform = "trim"
	TransformDigits   Transform = "digits"
	TransformNumber   Transform = "number"
	TransformInteger  Transform = "integer"
	TransformRaw      Transform = "raw"
	TransformSanitize Transform = "sanitize"
)

// Valid reports whether t is a known transform (the empty default included).
func (t Transform) Valid() bool {
	switch t {
	case TransformDefault, TransformTrim, TransformDigits, TransformNumber,
		TransformInteger, TransformRaw, TransformSanitize:
		return true
	default:
		return false
	}
}

// PayloadSkip excludes a field from request payloads when used as PayloadKey.
const PayloadSkip = "-"

// DefaultTextMinLength is the minimum trimmed length of free-text fields when
// the field does not set one.
const DefaultTextMinLength = 3

// Messages overrides the human-readable feedback of a field.
type Messages struct {
	Invalid string `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	Valid   string `json:"valid,omitempty" yaml:"valid,omitempty"`
	Empty   string `json:"empty,omitempty" yaml:"empty,omitempty"`
}

// FieldSpec describes one form control.
type FieldSpec struct {
	Key       string       `json:"key" yaml:"key"`
	Label     string       `json:"label,omitempty" yaml:"label,omitempty"`
	Kind      Kind         `json:"kind" yaml:"kind"`
	Document  DocumentMode `json:"document,omitempty" yaml:"document,omitempty"`
	Required  bool         `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength int          `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	Options   []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Default   string       `json:"default,omitempty" yaml:"default,omitempty"`
	// After names the field holding the start of a date or time range; this
	// field holds the end.
	After string `json:"after,omitempty" yaml:"after,omitempty"`
	// Confirms names the password field a password-confirm field must equal.
	Confirms string   `json:"confirms,omitempty" yaml:"confirms,omitempty"`
	Positive bool     `json:"positive,omitempty" yaml:"positive,omitempty"`
	Secret   bool     `json:"secret,omitempty" yaml:"secret,omitempty"`
	Messages Messages `json:"messages,omitempty" yaml:"messages,omitempty"`

	PayloadKey string    `json:"payloadKey,omitempty" yaml:"payloadKey,omitempty"`
	Transform  Transform `json:"transform,omitempty" yaml:"transform,omitempty"`
	OmitEmpty  bool      `json:"omitEmpty,omitempty" yaml:"omitEmpty,omitempty"`
}

// PayloadName returns the request body key for the field, or "" when the
// field is excluded from payloads.
func (f FieldSpec) PayloadName() string {
	switch f.PayloadKey {
	case PayloadSkip:
		return ""
	case "":
		if f.Kind == KindPasswordConfirm {
			return ""
		}
		return f.Key
	default:
		return f.PayloadKey
	}
}

// MinTextLength returns the effective minimum length for text fields.
func (f FieldSpec) MinTextLength() int {
	if f.MinLength > 0 {
		return f.MinLength
	}
	return DefaultTextMinLength
}

// DisplayLabel returns the label or falls back to the key.
func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// Fieldset is a named group of fields toggled together by a discriminator.
type Fieldset struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}

// Discriminator selects which fieldsets are active. Modes maps a
// discriminator value to the fieldsets it activates; fieldsets not listed for
// the current mode are inactive. Fields outside every fieldset are always
// active.
type Discriminator struct {
	Key     string              `json:"key" yaml:"key"`
	Modes   map[string][]string `json:"modes" yaml:"modes"`
	Default string              `json:"default,omitempty" yaml:"default,omitempty"`
}

// Endpoint is the REST target of a submission.
type Endpoint struct {
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Path   string `json:"path" yaml:"path"`
}

// HTTPMethod returns the method, defaulting to POST.
func (e Endpoint) HTTPMethod() string {
	if e.Method == "" {
		return "POST"
	}
	return e.Method
}

// SuccessAction describes what happens after a successful submission. When
// Navigate holds an entry for the active mode (or the "" default) the caller
// is asked to navigate there; otherwise a non-empty Refresh names the list
// the caller should reload.
type SuccessAction struct {
	Navigate map[string]string `json:"navigate,omitempty" yaml:"navigate,omitempty"`
	Refresh  string            `json:"refresh,omitempty" yaml:"refresh,omitempty"`
}

// NavigateTo resolves the navigation target for mode.
func (a SuccessAction) NavigateTo(mode string) string {
	if target, ok := a.Navigate[mode]; ok {
		return target
	}
	return a.Navigate[""]
}

// FormSpec is the complete declarative description of one form.
type FormSpec struct {
	ID            string              `json:"id" yaml:"id"`
	Title         string              `json:"title,omitempty" yaml:"title,omitempty"`
	Fields        []FieldSpec         `json:"fields" yaml:"fields"`
	Fieldsets     []Fieldset          `json:"fieldsets,omitempty" yaml:"fieldsets,omitempty"`
	Discriminator *Discriminator      `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	Endpoints     map[string]Endpoint `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	RequiresAuth  bool                `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`

	SubmitLabel    string        `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	PendingLabel   string        `json:"pendingLabel,omitempty" yaml:"pendingLabel,omitempty"`
	SuccessMessage string        `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
	FailureMessage string        `json:"failureMessage,omitempty" yaml:"failureMessage,omitempty"`
	OnSuccess      SuccessAction `json:"onSuccess,omitempty" yaml:"onSuccess,omitempty"`

	// Constants are merged into every payload. The string "$today" is
	// replaced by the submission date (YYYY-MM-DD).
	Constants map[string]any `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Field returns the FieldSpec for key.
func (s FormSpec) Field(key string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Fieldset returns the named fieldset.
func (s FormSpec) Fieldset(name string) (Fieldset, bool) {
	for _, set := range s.Fieldsets {
		if set.Name == name {
			return set, true
		}
	}
	return Fieldset{}, false
}

// Endpoint resolves the endpoint for mode, falling back to the "" entry.
func (s FormSpec) Endpoint(mode string) (Endpoint, bool) {
	if ep, ok := s.Endpoints[mode]; ok {
		return ep, true
	}
	ep, ok := s.Endpoints[""]
	return ep, ok
}
