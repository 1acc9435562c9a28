package transform

import (
	"context"
	"fmt"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
)

// Built-in batch types.
const (
	BatchTypeDefault     model.BatchType = "default"
	BatchTypePassthrough model.BatchType = "passthrough"
	BatchTypeMultiJob    model.BatchType = "multi_job"
)

// jobsField is the configuration key the multi_job transformer expands.
const jobsField = "jobs"

// DefaultTransformer wraps the configuration in a singleton list,
// deep-copied so downstream mutation cannot reach the frozen configuration.
func DefaultTransformer() Transformer {
	return TransformerFunc(func(configuration model.Document) ([]model.Document, error) {
		return []model.Document{configuration.DeepCopy()}, nil
	})
}

// PassthroughTransformer wraps the configuration in a singleton list
// without copying. Callers own the aliasing consequences.
func PassthroughTransformer() Transformer {
	return TransformerFunc(func(configuration model.Document) ([]model.Document, error) {
		return []model.Document{configuration}, nil
	})
}

// MultiJobTransformer expands the "jobs" field of the configuration into
// one job document per entry. A configuration without a "jobs" field falls
// back to the default singleton behavior.
func MultiJobTransformer() Transformer {
	return TransformerFunc(func(configuration model.Document) ([]model.Document, error) {
		raw, ok := configuration.Get(jobsField)
		if !ok {
			return []model.Document{configuration.DeepCopy()}, nil
		}

		entries, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("multi_job: '%s' field must be a list, got %T", jobsField, raw)
		}

		documents := make([]model.Document, 0, len(entries))
		for i, entry := range entries {
			m, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("multi_job: '%s' entry %d must be a mapping, got %T", jobsField, i, entry)
			}
			documents = append(documents, model.Document(m).DeepCopy())
		}
		return documents, nil
	})
}

// NoopValidator accepts every batch without consulting the external system.
func NoopValidator() Validator {
	return ValidatorFunc(func(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error) {
		return nil, nil
	})
}

// RequireEntityAbsent reports an error string for every job document whose
// remote entity already exists. Used by batch types whose submission would
// collide with an existing resource.
func RequireEntityAbsent() Validator {
	return ValidatorFunc(func(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error) {
		var problems []string
		for i, doc := range jobDocuments {
			exists, err := checker.Exists(ctx, doc, batchType)
			if err != nil {
				return nil, err
			}
			if exists {
				problems = append(problems, fmt.Sprintf("job %d (%s): target entity already exists", i, describeDocument(doc)))
			}
		}
		return problems, nil
	})
}

// RequireEntityExists reports an error string for every job document whose
// remote entity is missing. Used by batch types that declare a
// prerequisite resource.
func RequireEntityExists() Validator {
	return ValidatorFunc(func(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error) {
		var problems []string
		for i, doc := range jobDocuments {
			exists, err := checker.Exists(ctx, doc, batchType)
			if err != nil {
				return nil, err
			}
			if !exists {
				problems = append(problems, fmt.Sprintf("job %d (%s): prerequisite entity does not exist", i, describeDocument(doc)))
			}
		}
		return problems, nil
	})
}

// describeDocument returns a short human-readable identifier for a job
// document, preferring its "name" field.
func describeDocument(doc model.Document) string {
	if name, ok := doc.GetString("name"); ok && name != "" {
		return name
	}
	return "unnamed"
}

// NewDefaultRegistry creates a Registry preloaded with the built-in batch
// types. Applications register their own types on top of it.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Definition{Type: BatchTypeDefault, Transformer: DefaultTransformer(), Validator: NoopValidator()})
	r.Register(Definition{Type: BatchTypePassthrough, Transformer: PassthroughTransformer(), Validator: NoopValidator()})
	r.Register(Definition{Type: BatchTypeMultiJob, Transformer: MultiJobTransformer(), Validator: NoopValidator()})
	return r
}
