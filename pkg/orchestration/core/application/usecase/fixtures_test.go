package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	usecase "github.com/tigerroll/lineup/pkg/orchestration/core/application/usecase"
	metrics "github.com/tigerroll/lineup/pkg/orchestration/core/metrics"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	repository "github.com/tigerroll/lineup/pkg/orchestration/core/domain/repository"
	transform "github.com/tigerroll/lineup/pkg/orchestration/core/transform"
	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	memory "github.com/tigerroll/lineup/pkg/orchestration/infrastructure/repository/memory"

	"github.com/stretchr/testify/require"
)

// fakeProcessingService is an in-memory stand-in for the external service.
// Submissions hand out sequential workflow ids; per-document failures are
// keyed by the document's "name" field.
type fakeProcessingService struct {
	mu           sync.Mutex
	nextID       int
	submitCalls  int
	failSubmitOf map[string]error
	pollStatus   map[string]model.JobStatus
	pollReported map[string]string
	pollErr      error
}

func newFakeProcessingService() *fakeProcessingService {
	return &fakeProcessingService{
		failSubmitOf: make(map[string]error),
		pollStatus:   make(map[string]model.JobStatus),
		pollReported: make(map[string]string),
	}
}

func (s *fakeProcessingService) Submit(ctx context.Context, batchType model.BatchType, jobConfiguration model.Document) (*port.SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCalls++

	request := model.Document{"batch_type": batchType.String(), "input": map[string]interface{}(jobConfiguration)}
	name, _ := jobConfiguration.GetString("name")
	if err, ok := s.failSubmitOf[name]; ok {
		return &port.SubmissionResult{Request: request, Response: model.Document{"error": err.Error()}}, err
	}

	s.nextID++
	externalID := fmt.Sprintf("wf-%d", s.nextID)
	s.pollStatus[externalID] = model.JobStatusRunning
	return &port.SubmissionResult{
		ExternalID: externalID,
		Request:    request,
		Response:   model.Document{"id": externalID},
	}, nil
}

func (s *fakeProcessingService) Poll(ctx context.Context, externalID string) (*port.PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pollErr != nil {
		return nil, s.pollErr
	}
	status, ok := s.pollStatus[externalID]
	if !ok {
		return nil, fmt.Errorf("unknown workflow '%s'", externalID)
	}
	reported, ok := s.pollReported[externalID]
	if !ok {
		reported = status.String()
	}
	return &port.PollResult{ReportedStatus: reported, Status: status}, nil
}

// setPollStatus programs the status the next poll of externalID reports.
func (s *fakeProcessingService) setPollStatus(externalID string, status model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollStatus[externalID] = status
}

var _ port.ProcessingService = (*fakeProcessingService)(nil)

// fakeExistenceChecker answers lookups from a canned map keyed by the
// document's "name" field.
type fakeExistenceChecker struct {
	mu     sync.Mutex
	exists map[string]bool
	err    error
}

func newFakeExistenceChecker() *fakeExistenceChecker {
	return &fakeExistenceChecker{exists: make(map[string]bool)}
}

func (c *fakeExistenceChecker) Exists(ctx context.Context, jobConfiguration model.Document, batchType model.BatchType) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	name, _ := jobConfiguration.GetString("name")
	return c.exists[name], nil
}

var _ port.EntityExistenceChecker = (*fakeExistenceChecker)(nil)

// fixture wires the application services over the in-memory repository and
// the fake external ports.
type fixture struct {
	repo       *memory.InMemoryOrchestrationRepository
	registry   *transform.Registry
	service    *fakeProcessingService
	checker    *fakeExistenceChecker
	jobs       usecase.JobManager
	batches    usecase.BatchManager
	reconciler usecase.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewInMemoryOrchestrationRepository()
	t.Cleanup(func() { _ = repo.Close() })

	txMgr := tx.NewNoopTransactionManager()
	recorder := metrics.NewNoopRecorder()
	registry := transform.NewDefaultRegistry()
	service := newFakeProcessingService()
	checker := newFakeExistenceChecker()

	jobs := usecase.NewDefaultJobManager(repo, txMgr, service, recorder)
	batches := usecase.NewDefaultBatchManager(repo, txMgr, registry, checker, jobs)
	reconciler := usecase.NewDefaultReconciler(repo, txMgr, recorder)

	return &fixture{
		repo:       repo,
		registry:   registry,
		service:    service,
		checker:    checker,
		jobs:       jobs,
		batches:    batches,
		reconciler: reconciler,
	}
}

// seedConfiguration stores an ACTIVE cycle and a VALID configuration with
// the given content and returns the configuration.
func (f *fixture) seedConfiguration(t *testing.T, content model.Document) *model.Configuration {
	t.Helper()
	ctx := context.Background()

	cycle := model.NewCycle("cycle-under-test")
	cycle.Activate()
	require.NoError(t, f.repo.SaveCycle(ctx, cycle))

	cfg := model.NewConfiguration(cycle.ID, content)
	cfg.MarkValid()
	require.NoError(t, f.repo.SaveConfiguration(ctx, cfg))
	return cfg
}

// multiJobContent builds a multi_job configuration document with one entry
// per name.
func multiJobContent(names ...string) model.Document {
	entries := make([]interface{}, 0, len(names))
	for _, n := range names {
		entries = append(entries, map[string]interface{}{"name": n})
	}
	return model.Document{"jobs": entries}
}

// jobByName finds the stored job whose configuration document carries the
// given name.
func (f *fixture) jobByName(t *testing.T, batchID, name string) *model.Job {
	t.Helper()
	ctx := context.Background()
	jobs, err := f.repo.FindJobsByBatchID(ctx, batchID)
	require.NoError(t, err)
	for _, job := range jobs {
		jc, err := f.repo.FindJobConfigurationByID(ctx, job.JobConfigurationID)
		require.NoError(t, err)
		if got, _ := jc.Data.GetString("name"); got == name {
			return job
		}
	}
	t.Fatalf("no job named '%s' in batch '%s'", name, batchID)
	return nil
}

var _ repository.OrchestrationRepository = (*memory.InMemoryOrchestrationRepository)(nil)
