// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"investor"},
		"properties": map[string]interface{}{
			"investor": map[string]interface{}{"type": "object"},
			"minScore": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
			"limit":    map[string]interface{}{"type": "integer", "minimum": 0},
		},
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	schema, err := Compile(rankSchema())
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     string
		valid   bool
		field   string
		message string
	}{
		{"valid", `{"investor":{},"minScore":40}`, true, "", ""},
		{"missing investor", `{"limit":5}`, false, "(root)", "investor is required"},
		{"min score too high", `{"investor":{},"minScore":101}`, false, "minScore", ""},
		{"limit wrong type", `{"investor":{},"limit":"ten"}`, false, "limit", "Invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := schema.ValidateJSON(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.Empty(t, res.Errors)
				return
			}
			assert.True(t, res.HasErrors(tt.field), res.Details())
			if tt.message != "" {
				assert.Contains(t, res.Details(), tt.message)
			}
		})
	}
}

func TestSchema_ValidateJSON_Malformed(t *testing.T) {
	schema, err := Compile(rankSchema())
	require.NoError(t, err)

	_, err = schema.ValidateJSON(`{"investor":`)
	assert.Error(t, err)
}

func TestSchema_NilAcceptsAnything(t *testing.T) {
	var schema *Schema
	res, err := schema.ValidateInput(map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 42})
	assert.Error(t, err)
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("matching.campaign.score"))
	assert.Error(t, ValidateActivityNaming("score-campaign"))
}
