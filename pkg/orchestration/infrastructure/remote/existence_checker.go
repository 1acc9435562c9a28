package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

const moduleExistenceChecker = "existence_checker"

// HTTPEntityExistenceChecker asks the external system whether the entity a
// job configuration would produce already exists. Used by validators and by
// the resubmission decision during batch submission.
type HTTPEntityExistenceChecker struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ port.EntityExistenceChecker = (*HTTPEntityExistenceChecker)(nil)

func NewHTTPEntityExistenceChecker(cfg *config.Config) (*HTTPEntityExistenceChecker, error) {
	if cfg.Lineup.Orchestrator.APIEndpoint == "" {
		return nil, exception.NewBatchError(moduleExistenceChecker, "orchestrator.apiEndpoint is not configured", nil, false)
	}
	timeout := time.Duration(cfg.Lineup.Orchestrator.RequestTimeoutSeconds) * time.Second
	return &HTTPEntityExistenceChecker{
		endpoint: strings.TrimRight(cfg.Lineup.Orchestrator.APIEndpoint, "/"),
		apiKey:   cfg.Lineup.Orchestrator.APIKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type existenceRequestBody struct {
	BatchType string         `json:"batch_type"`
	Input     model.Document `json:"input"`
}

type existenceResponseBody struct {
	Exists bool `json:"exists"`
}

// Exists posts the job configuration document to the entity lookup
// endpoint. A 404 is a definitive "does not exist", not an error.
func (c *HTTPEntityExistenceChecker) Exists(ctx context.Context, jobConfiguration model.Document, batchType model.BatchType) (bool, error) {
	payload, err := json.Marshal(existenceRequestBody{BatchType: string(batchType), Input: jobConfiguration})
	if err != nil {
		return false, exception.NewBatchError(moduleExistenceChecker, "failed to encode existence request", err, false)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/entities/lookup", bytes.NewReader(payload))
	if err != nil {
		return false, exception.NewBatchError(moduleExistenceChecker, "failed to build existence request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, exception.NewBatchError(moduleExistenceChecker,
			fmt.Sprintf("existence lookup for batch type '%s' failed", batchType), err, true)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var body existenceResponseBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, exception.NewBatchError(moduleExistenceChecker, "failed to decode existence response", err, false)
		}
		return body.Exists, nil
	default:
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return false, exception.NewBatchError(moduleExistenceChecker,
			fmt.Sprintf("external service rejected existence lookup (HTTP %d)", resp.StatusCode), nil, retryable)
	}
}
