// ABOUTME: Tests for the JSON Schema builder conveniences.
// ABOUTME: Validates builder output shape and JSON encoding.

package schema

import (
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject(t *testing.T) {
	s := Object(map[string]*jsonschema.Schema{
		"id":      String("item identifier"),
		"verbose": Boolean("include details"),
	}, "id")

	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"id"}, s.Required)
	require.Contains(t, s.Properties, "id")
	assert.Equal(t, "string", s.Properties["id"].Type)
	assert.Equal(t, "boolean", s.Properties["verbose"].Type)
}

func TestBuildersEncodeToJSON(t *testing.T) {
	s := Object(map[string]*jsonschema.Schema{
		"count": Integer("how many"),
		"tags":  Array("labels", String("one label")),
		"mode":  Enum("sort mode", "asc", "desc"),
	})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "object", decoded["type"])

	props := decoded["properties"].(map[string]any)
	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])
	assert.ElementsMatch(t, []any{"asc", "desc"}, props["mode"].(map[string]any)["enum"])
}
