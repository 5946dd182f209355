// Package definitions loads declarative form specs from JSON or YAML files
// and ships the application's own forms embedded in the binary.
package definitions

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-hemoform/pkg/model"
)

//go:embed forms/*.yaml
var builtin embed.FS

// Store holds validated form specs keyed by id.
type Store struct {
	forms   map[string]model.FormSpec
	sources map[string]string
}

type documentFile struct {
	Forms map[string]model.FormSpec `json:"forms" yaml:"forms"`
}

// Default returns the embedded application forms.
func Default() (*Store, error) {
	sub, err := fs.Sub(builtin, "forms")
	if err != nil {
		return nil, fmt.Errorf("definitions: open embedded forms: %w", err)
	}
	return LoadFS(sub)
}

// LoadFS walks fsys and parses every .json/.yaml/.yml file. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		forms:   make(map[string]model.FormSpec),
		sources: make(map[string]string),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definitions: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, spec := range doc.Forms {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("definitions: file %s defines an empty form id", path)
			}
			if spec.ID != "" && spec.ID != id {
				return fmt.Errorf("definitions: file %s form %q declares mismatched id %q", path, id, spec.ID)
			}
			if previous, exists := store.sources[id]; exists {
				return fmt.Errorf("definitions: duplicate form %q (files %s and %s)", id, previous, path)
			}
			spec.ID = id
			if err := spec.Validate(); err != nil {
				return fmt.Errorf("definitions: file %s: %w", path, err)
			}
			store.forms[id] = spec
			store.sources[id] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns the FormSpec for id.
func (s *Store) Form(id string) (model.FormSpec, bool) {
	if s == nil {
		return model.FormSpec{}, false
	}
	spec, ok := s.forms[id]
	return spec, ok
}

// Source returns the file a form was loaded from.
func (s *Store) Source(id string) string {
	if s == nil {
		return ""
	}
	return s.sources[id]
}

// IDs returns the form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("definitions: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("definitions: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("definitions: parse %s: %w", source, err)
	}
	return doc, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
