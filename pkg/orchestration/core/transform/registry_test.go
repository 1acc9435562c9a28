package transform_test

import (
	"context"
	"errors"
	"testing"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	transform "github.com/tigerroll/lineup/pkg/orchestration/core/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticChecker answers existence lookups from a canned map keyed by the
// document's "name" field.
type staticChecker struct {
	exists map[string]bool
	err    error
}

func (c *staticChecker) Exists(ctx context.Context, jobConfiguration model.Document, batchType model.BatchType) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	name, _ := jobConfiguration.GetString("name")
	return c.exists[name], nil
}

var _ port.EntityExistenceChecker = (*staticChecker)(nil)

func TestRegistry_Register(t *testing.T) {
	r := transform.NewRegistry()
	assert.False(t, r.IsRegistered("custom"))

	r.Register(transform.Definition{
		Type:        "custom",
		Transformer: transform.DefaultTransformer(),
		Validator:   transform.NoopValidator(),
	})
	assert.True(t, r.IsRegistered("custom"))

	// Half-wired definitions are programming errors.
	assert.Panics(t, func() {
		r.Register(transform.Definition{Type: "broken", Transformer: transform.DefaultTransformer()})
	})
	assert.Panics(t, func() {
		r.Register(transform.Definition{Type: "", Transformer: transform.DefaultTransformer(), Validator: transform.NoopValidator()})
	})
}

func TestRegistry_Expand_UnknownType(t *testing.T) {
	r := transform.NewRegistry()
	_, err := r.Expand("nope", model.Document{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrUnknownBatchType))
}

func TestDefaultTransformer(t *testing.T) {
	r := transform.NewDefaultRegistry()
	cfg := model.Document{"name": "unit-a", "nested": map[string]interface{}{"key": "value"}}

	docs, err := r.Expand(transform.BatchTypeDefault, cfg)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "unit-a", docs[0]["name"])

	// The expansion is a deep copy: mutating the job document must not
	// reach the configuration.
	docs[0].Put("name", "changed")
	docs[0]["nested"].(map[string]interface{})["key"] = "changed"
	assert.Equal(t, "unit-a", cfg["name"])
	assert.Equal(t, "value", cfg["nested"].(map[string]interface{})["key"])
}

func TestMultiJobTransformer(t *testing.T) {
	r := transform.NewDefaultRegistry()

	cfg := model.Document{
		"jobs": []interface{}{
			map[string]interface{}{"name": "unit-a"},
			map[string]interface{}{"name": "unit-b"},
			map[string]interface{}{"name": "unit-c"},
		},
	}
	docs, err := r.Expand(transform.BatchTypeMultiJob, cfg)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "unit-b", docs[1]["name"])

	// Without a jobs field the configuration expands to itself.
	docs, err = r.Expand(transform.BatchTypeMultiJob, model.Document{"name": "solo"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// An empty jobs list is a valid zero-job expansion.
	docs, err = r.Expand(transform.BatchTypeMultiJob, model.Document{"jobs": []interface{}{}})
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Malformed jobs entries are rejected.
	_, err = r.Expand(transform.BatchTypeMultiJob, model.Document{"jobs": "not a list"})
	assert.Error(t, err)
	_, err = r.Expand(transform.BatchTypeMultiJob, model.Document{"jobs": []interface{}{"not a mapping"}})
	assert.Error(t, err)
}

func TestRequireEntityAbsent(t *testing.T) {
	checker := &staticChecker{exists: map[string]bool{"taken": true}}
	validator := transform.RequireEntityAbsent()

	docs := []model.Document{
		{"name": "free"},
		{"name": "taken"},
	}
	problems, err := validator.Validate(context.Background(), "default", docs, checker)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "taken")

	// Checker failures abort validation instead of producing problems.
	checker.err = errors.New("lookup down")
	_, err = validator.Validate(context.Background(), "default", docs, checker)
	assert.Error(t, err)
}

func TestRequireEntityExists(t *testing.T) {
	checker := &staticChecker{exists: map[string]bool{"present": true}}
	validator := transform.RequireEntityExists()

	docs := []model.Document{
		{"name": "present"},
		{"name": "missing"},
	}
	problems, err := validator.Validate(context.Background(), "default", docs, checker)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "missing")
}

func TestRegistry_RegisteredTypes(t *testing.T) {
	r := transform.NewDefaultRegistry()
	types := r.RegisteredTypes()
	assert.Contains(t, types, transform.BatchTypeDefault)
	assert.Contains(t, types, transform.BatchTypePassthrough)
	assert.Contains(t, types, transform.BatchTypeMultiJob)
}
