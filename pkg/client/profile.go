package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrProfileUnavailable is returned when the profile endpoint does not yield
// the requested value.
var ErrProfileUnavailable = errors.New("client: profile unavailable")

// ProfileEnricher copies a value from the signed-in user's profile into a
// payload before submission. The scheduling form uses it to attach
// usuario.id_usuario as id_usuario.
type ProfileEnricher struct {
	Client *Client
	Path   string
	Source string
	Target string
}

// NewProfileEnricher returns the enricher used by the appointment form.
func NewProfileEnricher(c *Client) ProfileEnricher {
	return ProfileEnricher{
		Client: c,
		Path:   "/api/perfil",
		Source: "usuario.id_usuario",
		Target: "id_usuario",
	}
}

// Enrich fetches the profile and sets payload[Target].
func (p ProfileEnricher) Enrich(ctx context.Context, payload map[string]any) error {
	if p.Client == nil {
		return errors.New("client: profile enricher has no client")
	}
	resp, err := p.Client.Do(ctx, Request{Method: http.MethodGet, Path: p.Path})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrProfileUnavailable, resp.StatusCode)
	}
	value, ok := Lookup(resp.Fields, p.Source)
	if !ok || value == nil {
		return fmt.Errorf("%w: %s missing", ErrProfileUnavailable, p.Source)
	}
	payload[p.Target] = value
	return nil
}
