package serialization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/lineup/pkg/orchestration/support/util/serialization"
)

func TestMaskedDocument(t *testing.T) {
	doc := map[string]interface{}{
		"name":    "unit-a",
		"api_key": "secret",
		"token":   "also-secret",
	}

	masked := serialization.MaskedDocument(doc, []string{"api_key", "token", "absent"})

	assert.Equal(t, "unit-a", masked["name"])
	assert.Equal(t, "********", masked["api_key"])
	assert.Equal(t, "********", masked["token"])
	_, ok := masked["absent"]
	assert.False(t, ok)

	// The input document is never mutated.
	assert.Equal(t, "secret", doc["api_key"])
}

func TestMaskedDocument_Empty(t *testing.T) {
	assert.Empty(t, serialization.MaskedDocument(nil, []string{"api_key"}))
	assert.Empty(t, serialization.MaskedDocument(map[string]interface{}{}, nil))
}

func TestMarshalDocument(t *testing.T) {
	data, err := serialization.MarshalDocument(map[string]interface{}{"count": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 3}`, string(data))

	// A nil document serializes to an empty object, not "null".
	data, err = serialization.MarshalDocument(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestUnmarshalDocument(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, serialization.UnmarshalDocument([]byte(`{"name": "unit-a"}`), &doc))
	assert.Equal(t, "unit-a", doc["name"])

	// Existing content is replaced, not merged.
	require.NoError(t, serialization.UnmarshalDocument([]byte(`{"other": true}`), &doc))
	_, ok := doc["name"]
	assert.False(t, ok)
	assert.Equal(t, true, doc["other"])

	// Empty and null payloads leave an empty document.
	require.NoError(t, serialization.UnmarshalDocument(nil, &doc))
	assert.Empty(t, doc)
	require.NoError(t, serialization.UnmarshalDocument([]byte("null"), &doc))
	assert.Empty(t, doc)

	err := serialization.UnmarshalDocument([]byte("not json"), &doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to deserialize")
}
