package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	schemas, err := Generate()
	require.NoError(t, err)
	require.Len(t, schemas, len(Payloads))

	ranking := schemas["ranking_response"]
	require.NotNil(t, ranking)
	assert.Equal(t, "object", ranking.Type)
	assert.Equal(t, "RankingResponse is the top-N ranking of one metric.", ranking.Description)

	metric, ok := ranking.Properties.Get("metric")
	require.True(t, ok)
	assert.Equal(t, "string", metric.Type)
	assert.Equal(t, "Metric is the ranked column.", metric.Description)

	_, ok = ranking.Properties.Get("identifier_column")
	assert.True(t, ok)
}

func TestNewSchemaIsJSON(t *testing.T) {
	data, err := NewSchema()
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "dataset_summary")
	assert.Contains(t, decoded, "health_response")

	props, ok := decoded["dataset_summary"]["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "metrics")
	assert.Contains(t, props, "cached")
}
