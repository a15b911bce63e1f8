package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand(t *testing.T) {
	output, err := executeCommand(rootCmd, "schema")
	require.NoError(t, err)

	var out struct {
		Schema     map[string]json.RawMessage `json:"schema"`
		Endpoints  []map[string]any           `json:"endpoints"`
		Metrics    []string                   `json:"metrics"`
		Identifier string                     `json:"identifier"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &out))

	assert.Contains(t, out.Schema, "ranking_response")
	assert.NotEmpty(t, out.Endpoints)
	assert.Len(t, out.Metrics, 16)
	assert.Equal(t, "Country", out.Identifier)
}
