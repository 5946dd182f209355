package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the session token issued by the backend after login or
// registration.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemoryTokens keeps the token for the lifetime of the process.
type MemoryTokens struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokens returns a store seeded with token.
func NewMemoryTokens(token string) *MemoryTokens {
	return &MemoryTokens{token: token}
}

func (m *MemoryTokens) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear() error {
	return m.SetToken("")
}

// FileTokens persists the token in a single file readable only by the user.
type FileTokens struct {
	path string
	mu   sync.Mutex
}

// NewFileTokens returns a store backed by path. An empty path resolves to
// hemoform/token under the user config directory.
func NewFileTokens(path string) (*FileTokens, error) {
	if strings.TrimSpace(path) == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("client: resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "hemoform", "token")
	}
	return &FileTokens{path: path}, nil
}

// Path returns the backing file.
func (f *FileTokens) Path() string {
	return f.path
}

// Token returns the stored token, or "" when the file is missing or
// unreadable.
func (f *FileTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *FileTokens) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("client: create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("client: write token: %w", err)
	}
	return nil
}

func (f *FileTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("client: remove token: %w", err)
	}
	return nil
}
