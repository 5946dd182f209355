// Package model defines the declarative form description shared by every
// stage of the engine. A FormSpec is an immutable list of FieldSpec entries
// plus optional fieldsets, a discriminator that selects which fieldsets are
// active, and the endpoints a submission is sent to. FormState instances,
// fieldset controllers and submission controllers all read the same spec and
// never mutate it. ValidationResult and Feedback describe the per-field output
// recomputed on every input change; they are derived values and are never
// persisted.
package model
