// Package wrerrors defines the runtime's error kinds (§7) as distinct
// wrapped error types with Is* predicate helpers, following the same
// pattern the rest of the corpus uses for transient/permanent classification.
package wrerrors

import (
	"errors"
	"fmt"
)

// ValidationError signals malformed block configuration discovered at
// construction time (negative duration, empty rep-scheme item,
// totalRounds < 1). Non-recoverable for the offending block.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// StrategyNotFoundError means the JIT compiler had no matching strategy for
// a set of statements.
type StrategyNotFoundError struct {
	StatementIDs []int
}

func NewStrategyNotFoundError(ids []int) *StrategyNotFoundError {
	return &StrategyNotFoundError{StatementIDs: ids}
}

func (e *StrategyNotFoundError) Error() string {
	return fmt.Sprintf("jit: no strategy for statements %v", e.StatementIDs)
}

// StackStateError covers invalid stack operations: a pop whose target is
// not the current stack top, or a child-group push whose parent is not the
// current stack top or whose group index is out of range. Logged and
// suppressed — the offending action becomes a no-op.
type StackStateError struct {
	Operation string
	Reason    string
}

func NewStackStateError(operation, reason string) *StackStateError {
	return &StackStateError{Operation: operation, Reason: reason}
}

func (e *StackStateError) Error() string {
	return fmt.Sprintf("stack: %s: %s", e.Operation, e.Reason)
}

// MemoryInvalidReferenceError marks a read/write attempted through a
// released memory reference. The Go API never returns it: Get reports
// ok=false, and Set/SetRaw through a dead reference, including the
// pipeline's Memory-phase writes, are silent no-ops. The runtime itself
// does not construct this error.
type MemoryInvalidReferenceError struct {
	RefID string
}

func NewMemoryInvalidReferenceError(refID string) *MemoryInvalidReferenceError {
	return &MemoryInvalidReferenceError{RefID: refID}
}

func (e *MemoryInvalidReferenceError) Error() string {
	return fmt.Sprintf("memory: reference %s is released or unknown", e.RefID)
}

// BehaviorError wraps an unexpected panic/error recovered from inside a
// behavior hook. It is recorded on the runtime and does not abort sibling
// behaviors.
type BehaviorError struct {
	BlockKey string
	Hook     string
	Cause    error
}

func NewBehaviorError(blockKey, hook string, cause error) *BehaviorError {
	return &BehaviorError{BlockKey: blockKey, Hook: hook, Cause: cause}
}

func (e *BehaviorError) Error() string {
	return fmt.Sprintf("behavior: %s.%s: %v", e.BlockKey, e.Hook, e.Cause)
}

func (e *BehaviorError) Unwrap() error { return e.Cause }

// PipelineOverflowError is raised when the Action Pipeline exceeds
// max_iterations draining phases in a single handle call. Fatal for that
// handle; the runtime remains usable afterward.
type PipelineOverflowError struct {
	MaxIterations int
}

func NewPipelineOverflowError(maxIterations int) *PipelineOverflowError {
	return &PipelineOverflowError{MaxIterations: maxIterations}
}

func (e *PipelineOverflowError) Error() string {
	return fmt.Sprintf("pipeline: exceeded max_iterations (%d)", e.MaxIterations)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsStrategyNotFoundError reports whether err is (or wraps) a
// StrategyNotFoundError.
func IsStrategyNotFoundError(err error) bool {
	var target *StrategyNotFoundError
	return errors.As(err, &target)
}

// IsStackStateError reports whether err is (or wraps) a StackStateError.
func IsStackStateError(err error) bool {
	var target *StackStateError
	return errors.As(err, &target)
}

// IsBehaviorError reports whether err is (or wraps) a BehaviorError.
func IsBehaviorError(err error) bool {
	var target *BehaviorError
	return errors.As(err, &target)
}

// IsPipelineOverflowError reports whether err is (or wraps) a
// PipelineOverflowError.
func IsPipelineOverflowError(err error) bool {
	var target *PipelineOverflowError
	return errors.As(err, &target)
}
