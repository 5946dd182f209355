package contract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const estoqueDoc = `openapi: 3.0.3
info:
  title: Hemo API
  version: "1.0"
paths:
  /api/estoque/adicionar:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [tipo_sanguineo, quantidade]
              properties:
                tipo_sanguineo:
                  type: string
                  enum: ["A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"]
                quantidade:
                  type: integer
                  minimum: 1
      responses:
        "200":
          description: ok
  /api/campanhas:
    get:
      responses:
        "200":
          description: ok
`

func TestCheckAcceptsConformingPayload(t *testing.T) {
	c, err := Load(context.Background(), []byte(estoqueDoc), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Operations())

	err = c.Check("post", "/api/estoque/adicionar", map[string]any{"tipo_sanguineo": "O-", "quantidade": 3})
	require.NoError(t, err)
}

func TestCheckRejectsViolations(t *testing.T) {
	c, err := Load(context.Background(), []byte(estoqueDoc), Options{})
	require.NoError(t, err)

	cases := map[string]map[string]any{
		"missing quantity": {"tipo_sanguineo": "O-"},
		"bad enum":         {"tipo_sanguineo": "Z", "quantidade": 1},
		"below minimum":    {"tipo_sanguineo": "A+", "quantidade": 0},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			err := c.Check("POST", "/api/estoque/adicionar", payload)
			require.ErrorIs(t, err, ErrViolation)
		})
	}
}

func TestUnknownOperationPasses(t *testing.T) {
	c, err := Load(context.Background(), []byte(estoqueDoc), Options{})
	require.NoError(t, err)
	require.NoError(t, c.Check("POST", "/api/login", map[string]any{"x": 1}))

	var nilChecker *Checker
	require.NoError(t, nilChecker.Check("POST", "/api/estoque/adicionar", nil))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(estoqueDoc), 0o600))

	c, err := LoadFile(context.Background(), path, Options{ResolveReferences: true})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Operations())

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	require.Error(t, err)
}

func TestLoadRejectsEmpty(t *testing.T) {
	_, err := Load(context.Background(), nil, Options{})
	require.Error(t, err)
}
