// Package remote implements the external processing service ports over
// HTTP. The service's API surface is treated as opaque: submission posts
// the job configuration document, polling reads back a vendor status string
// that gets mapped onto the engine's job status domain.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	config "github.com/tigerroll/lineup/pkg/orchestration/core/config"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
	serialization "github.com/tigerroll/lineup/pkg/orchestration/support/util/serialization"
)

const moduleProcessingService = "processing_service"

// HTTPProcessingService talks to the external asynchronous processing
// service: POST /workflows to submit, GET /workflows/{id} to poll.
type HTTPProcessingService struct {
	endpoint   string
	apiKey     string
	client     *http.Client
	tracer     trace.Tracer
	maskedKeys []string
}

var _ port.ProcessingService = (*HTTPProcessingService)(nil)

func NewHTTPProcessingService(cfg *config.Config) (*HTTPProcessingService, error) {
	if cfg.Lineup.Orchestrator.APIEndpoint == "" {
		return nil, exception.NewBatchError(moduleProcessingService, "orchestrator.apiEndpoint is not configured", nil, false)
	}
	timeout := time.Duration(cfg.Lineup.Orchestrator.RequestTimeoutSeconds) * time.Second
	return &HTTPProcessingService{
		endpoint:   strings.TrimRight(cfg.Lineup.Orchestrator.APIEndpoint, "/"),
		apiKey:     cfg.Lineup.Orchestrator.APIKey,
		client:     &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("lineup/remote"),
		maskedKeys: cfg.Lineup.System.MaskedDocumentKeys,
	}, nil
}

// submitRequestBody is the wire form of one submission.
type submitRequestBody struct {
	BatchType string         `json:"batch_type"`
	Input     model.Document `json:"input"`
}

// workflowResponse is the wire form the service answers with, for both
// submission and polling.
type workflowResponse struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Detail model.Document `json:"detail,omitempty"`
}

// Submit posts one job configuration to the external service. The returned
// result carries the request and response snapshots even on failure, so the
// caller can persist them for audit.
func (s *HTTPProcessingService) Submit(ctx context.Context, batchType model.BatchType, jobConfiguration model.Document) (*port.SubmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "ProcessingService.Submit",
		trace.WithAttributes(attribute.String("batch_type", string(batchType))))
	defer span.End()

	body := submitRequestBody{BatchType: string(batchType), Input: jobConfiguration}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, exception.NewBatchError(moduleProcessingService, "failed to encode submission request", err, false)
	}
	requestSnapshot := model.Document{"batch_type": string(batchType), "input": jobConfiguration}

	// Log the outgoing document with configured keys masked; the wire
	// payload above keeps the real values.
	if masked, merr := serialization.MarshalDocument(serialization.MaskedDocument(jobConfiguration, s.maskedKeys)); merr == nil {
		logger.Debugf("Submitting workflow (batch type '%s') with input %s", batchType, masked)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/workflows", bytes.NewReader(payload))
	if err != nil {
		return &port.SubmissionResult{Request: requestSnapshot}, exception.NewBatchError(moduleProcessingService, "failed to build submission request", err, false)
	}
	s.decorate(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return &port.SubmissionResult{Request: requestSnapshot},
			exception.NewBatchError(moduleProcessingService, "submission request failed", err, true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &port.SubmissionResult{Request: requestSnapshot},
			exception.NewBatchError(moduleProcessingService, "failed to read submission response", err, true)
	}
	responseSnapshot := snapshotResponse(resp.StatusCode, raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return &port.SubmissionResult{Request: requestSnapshot, Response: responseSnapshot},
			exception.NewBatchError(moduleProcessingService,
				fmt.Sprintf("external service rejected submission (HTTP %d)", resp.StatusCode), nil, retryable)
	}

	var wf workflowResponse
	if err := json.Unmarshal(raw, &wf); err != nil {
		return &port.SubmissionResult{Request: requestSnapshot, Response: responseSnapshot},
			exception.NewBatchError(moduleProcessingService, "failed to decode submission response", err, false)
	}
	if wf.ID == "" {
		return &port.SubmissionResult{Request: requestSnapshot, Response: responseSnapshot},
			exception.NewBatchError(moduleProcessingService, "external service returned no workflow identifier", nil, false)
	}
	logger.Debugf("Submitted workflow '%s' (batch type '%s').", wf.ID, batchType)
	return &port.SubmissionResult{
		ExternalID: wf.ID,
		Request:    requestSnapshot,
		Response:   responseSnapshot,
	}, nil
}

// Poll reads the current status of one workflow.
func (s *HTTPProcessingService) Poll(ctx context.Context, externalID string) (*port.PollResult, error) {
	ctx, span := s.tracer.Start(ctx, "ProcessingService.Poll",
		trace.WithAttributes(attribute.String("external_id", externalID)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/workflows/"+externalID, nil)
	if err != nil {
		return nil, exception.NewBatchError(moduleProcessingService, "failed to build poll request", err, false)
	}
	s.decorate(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, exception.NewBatchError(moduleProcessingService,
			fmt.Sprintf("poll of workflow '%s' failed", externalID), err, true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewBatchError(moduleProcessingService, "failed to read poll response", err, true)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, exception.NewBatchError(moduleProcessingService,
			fmt.Sprintf("external service rejected poll of workflow '%s' (HTTP %d)", externalID, resp.StatusCode), nil, retryable)
	}

	var wf workflowResponse
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, exception.NewBatchError(moduleProcessingService, "failed to decode poll response", err, false)
	}
	return &port.PollResult{
		ReportedStatus: wf.Status,
		Status:         MapReportedStatus(wf.Status),
	}, nil
}

func (s *HTTPProcessingService) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}

// snapshotResponse preserves the raw response for the audit columns even
// when it is not valid JSON.
func snapshotResponse(statusCode int, raw []byte) model.Document {
	snapshot := model.Document{"http_status": statusCode}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		snapshot["body"] = decoded
	} else {
		snapshot["body"] = string(raw)
	}
	return snapshot
}

// MapReportedStatus maps the vendor status vocabulary onto the engine's job
// status domain. Unknown values map to RUNNING so an unrecognized live
// state never terminates a job by accident.
func MapReportedStatus(reported string) model.JobStatus {
	switch strings.ToUpper(reported) {
	case "SUBMITTED", "ACCEPTED":
		return model.JobStatusSubmitted
	case "QUEUED":
		return model.JobStatusQueued
	case "PENDING":
		return model.JobStatusPending
	case "RUNNING", "IN_PROGRESS", "EXECUTING":
		return model.JobStatusRunning
	case "FINISHED", "SUCCEEDED", "COMPLETED":
		return model.JobStatusFinished
	case "FAILED":
		return model.JobStatusFailed
	case "CANCEL_REQUESTED":
		return model.JobStatusCancelRequested
	case "CANCELLING":
		return model.JobStatusCancelling
	case "CANCELLED", "CANCELED":
		return model.JobStatusCancelled
	case "ERROR":
		// ERROR is reserved for submission failures that never produced an
		// external id. A job the vendor reports as errored did run remotely,
		// so it lands on FAILED: terminal, reconcilable and resubmittable.
		return model.JobStatusFailed
	default:
		logger.Warnf("Unknown reported workflow status '%s'; treating as RUNNING.", reported)
		return model.JobStatusRunning
	}
}
