// Package transform implements the batch-type registry: the mapping from a
// batch type to the pure transformer that expands one configuration
// document into per-job configuration documents, and to the validator that
// runs batch-type-specific pre-flight checks. The registry is an explicit
// object constructed at startup and passed by reference — never
// package-level mutable state.
package transform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	port "github.com/tigerroll/lineup/pkg/orchestration/core/application/port"
	model "github.com/tigerroll/lineup/pkg/orchestration/core/domain/model"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
)

// ErrUnknownBatchType is returned when a batch type has no registered
// definition.
var ErrUnknownBatchType = errors.New("unknown batch type")

func init() {
	exception.RegisterErrorType("ErrUnknownBatchType", ErrUnknownBatchType)
}

// Transformer expands one configuration document into zero or more per-job
// configuration documents. Transformers must be side-effect-free and must
// not mutate their input; this contract is enforced by convention and unit
// tests, not runtime checks.
type Transformer interface {
	Transform(configuration model.Document) ([]model.Document, error)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(configuration model.Document) ([]model.Document, error)

// Transform implements Transformer.
func (f TransformerFunc) Transform(configuration model.Document) ([]model.Document, error) {
	return f(configuration)
}

// Validator runs the batch-type-specific pre-flight check of ValidateBatch
// against the external system, through the read-only existence checker.
// It returns human-readable error strings; an empty slice means valid.
type Validator interface {
	Validate(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error)
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error)

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error) {
	return f(ctx, batchType, jobDocuments, checker)
}

// Definition binds a batch type to its transformer and validator. Both
// capabilities are mandatory, so a batch type cannot reach the managers
// half-wired.
type Definition struct {
	Type        model.BatchType
	Transformer Transformer
	Validator   Validator
}

// Registry holds the batch-type definitions. Re-registering a type silently
// replaces the prior definition (last-registration-wins), which is
// intentional to support test overrides.
type Registry struct {
	mu   sync.RWMutex
	defs map[model.BatchType]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[model.BatchType]Definition),
	}
}

// Register stores a batch-type definition. A definition missing its type,
// transformer or validator is a programming error and panics at
// construction time rather than failing at dispatch time.
func (r *Registry) Register(def Definition) {
	if def.Type == "" {
		panic("transform: batch type name cannot be empty")
	}
	if def.Transformer == nil {
		panic(fmt.Sprintf("transform: batch type '%s' registered without a transformer", def.Type))
	}
	if def.Validator == nil {
		panic(fmt.Sprintf("transform: batch type '%s' registered without a validator", def.Type))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Type] = def
}

// Lookup returns the definition registered for the given batch type.
func (r *Registry) Lookup(batchType model.BatchType) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[batchType]
	return def, ok
}

// IsRegistered reports whether a batch type has a definition.
func (r *Registry) IsRegistered(batchType model.BatchType) bool {
	_, ok := r.Lookup(batchType)
	return ok
}

// Expand looks up the transformer for the given batch type and invokes it.
// An empty result is valid and yields a batch with zero jobs.
func (r *Registry) Expand(batchType model.BatchType, configuration model.Document) ([]model.Document, error) {
	def, ok := r.Lookup(batchType)
	if !ok {
		return nil, exception.NewBatchError("transform", fmt.Sprintf("batch type '%s' is not registered", batchType), ErrUnknownBatchType, false)
	}
	return def.Transformer.Transform(configuration)
}

// Validate runs the validator registered for the given batch type.
func (r *Registry) Validate(ctx context.Context, batchType model.BatchType, jobDocuments []model.Document, checker port.EntityExistenceChecker) ([]string, error) {
	def, ok := r.Lookup(batchType)
	if !ok {
		return nil, exception.NewBatchError("transform", fmt.Sprintf("batch type '%s' is not registered", batchType), ErrUnknownBatchType, false)
	}
	return def.Validator.Validate(ctx, batchType, jobDocuments, checker)
}

// RegisteredTypes returns the sorted set of registered batch types.
func (r *Registry) RegisteredTypes() []model.BatchType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]model.BatchType, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
