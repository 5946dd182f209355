// Package contract checks outbound payloads against the request-body schemas
// of an OpenAPI 3 document before they reach the backend.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrViolation wraps every schema mismatch reported by Check.
var ErrViolation = errors.New("contract: payload violates request schema")

// Options controls document loading.
type Options struct {
	// ResolveReferences allows external $ref resolution and runs the
	// document validator after loading.
	ResolveReferences bool
}

// Checker indexes JSON request-body schemas by "METHOD /path".
type Checker struct {
	schemas map[string]*openapi3.Schema
}

// LoadFile reads and indexes the document at path.
func LoadFile(ctx context.Context, path string, opts Options) (*Checker, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("contract: read %s: %w", path, err)
	}
	return Load(ctx, raw, opts)
}

// Load indexes an OpenAPI document held in memory (JSON or YAML).
func Load(ctx context.Context, raw []byte, opts Options) (*Checker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("contract: validate: %w", err)
		}
	}

	c := &Checker{schemas: make(map[string]*openapi3.Schema)}
	if doc.Paths == nil {
		return c, nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		c.collect("POST", path, item.Post)
		c.collect("PUT", path, item.Put)
		c.collect("PATCH", path, item.Patch)
		c.collect("DELETE", path, item.Delete)
	}
	return c, nil
}

func (c *Checker) collect(method, path string, op *openapi3.Operation) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}
	content := op.RequestBody.Value.Content
	mt, ok := content["application/json"]
	if !ok || mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return
	}
	c.schemas[key(method, path)] = mt.Schema.Value
}

// Operations returns how many request bodies were indexed.
func (c *Checker) Operations() int {
	return len(c.schemas)
}

// Check validates payload for method and path. Operations missing from the
// document pass.
func (c *Checker) Check(method, path string, payload map[string]any) error {
	if c == nil {
		return nil
	}
	schema, ok := c.schemas[key(method, path)]
	if !ok {
		return nil
	}

	// Round-trip through JSON so the validator sees the same shapes the
	// server will decode (float64 numbers, plain maps).
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("contract: encode payload: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("contract: decode payload: %w", err)
	}

	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrViolation, strings.ToUpper(method), path, err)
	}
	return nil
}

func key(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
