package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	remote "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/remote"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

func TestHTTPEntityExistenceChecker_Exists(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entities/lookup", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"exists": true}`))
	}))
	defer server.Close()

	checker, err := remote.NewHTTPEntityExistenceChecker(newRemoteConfig(server.URL))
	require.NoError(t, err)

	exists, err := checker.Exists(context.Background(), model.Document{"name": "unit-a"}, model.BatchType("multi_job"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "multi_job", captured["batch_type"])
}

func TestHTTPEntityExistenceChecker_NotFoundMeansAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker, err := remote.NewHTTPEntityExistenceChecker(newRemoteConfig(server.URL))
	require.NoError(t, err)

	// 404 is a definitive answer, not a failure.
	exists, err := checker.Exists(context.Background(), model.Document{"name": "unit-a"}, model.BatchType("multi_job"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHTTPEntityExistenceChecker_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	checker, err := remote.NewHTTPEntityExistenceChecker(newRemoteConfig(server.URL))
	require.NoError(t, err)

	_, err = checker.Exists(context.Background(), model.Document{"name": "unit-a"}, model.BatchType("multi_job"))
	require.Error(t, err)
	assert.True(t, exception.IsRetryable(err))
}
