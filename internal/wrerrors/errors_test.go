package wrerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidationErrorMatchesDirectAndWrapped(t *testing.T) {
	err := NewValidationError("duration", "must be positive")
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("compiling block: %w", err)))
	assert.False(t, IsValidationError(errors.New("unrelated")))
}

func TestIsStrategyNotFoundErrorMatchesDirectAndWrapped(t *testing.T) {
	err := NewStrategyNotFoundError([]int{1, 2, 3})
	assert.True(t, IsStrategyNotFoundError(err))
	assert.True(t, IsStrategyNotFoundError(fmt.Errorf("jit: %w", err)))
	assert.False(t, IsStrategyNotFoundError(errors.New("unrelated")))
	assert.Contains(t, err.Error(), "1 2 3")
}

func TestIsStackStateErrorMatchesDirectAndWrapped(t *testing.T) {
	err := NewStackStateError("pop", "stack already empty")
	assert.True(t, IsStackStateError(err))
	assert.True(t, IsStackStateError(fmt.Errorf("handling action: %w", err)))
	assert.False(t, IsStackStateError(errors.New("unrelated")))
}

func TestIsBehaviorErrorMatchesDirectAndWrapped(t *testing.T) {
	cause := errors.New("boom")
	err := NewBehaviorError("b1", "OnNext", cause)
	assert.True(t, IsBehaviorError(err))
	assert.True(t, IsBehaviorError(fmt.Errorf("pipeline: %w", err)))
	assert.False(t, IsBehaviorError(errors.New("unrelated")))

	assert.ErrorIs(t, err, cause)
}

func TestIsPipelineOverflowErrorMatchesDirectAndWrapped(t *testing.T) {
	err := NewPipelineOverflowError(100)
	assert.True(t, IsPipelineOverflowError(err))
	assert.True(t, IsPipelineOverflowError(fmt.Errorf("handle: %w", err)))
	assert.False(t, IsPipelineOverflowError(errors.New("unrelated")))
	assert.Contains(t, err.Error(), "100")
}

func TestIsMemoryInvalidReferenceErrorMatchesDirectAndWrapped(t *testing.T) {
	err := NewMemoryInvalidReferenceError("ref-123")
	var target *MemoryInvalidReferenceError
	assert.True(t, errors.As(err, &target))
	assert.True(t, errors.As(fmt.Errorf("memory op: %w", err), &target))
	assert.Contains(t, err.Error(), "ref-123")
}

func TestPredicatesDoNotCrossMatchDifferentErrorKinds(t *testing.T) {
	validation := NewValidationError("f", "m")

	assert.False(t, IsStrategyNotFoundError(validation))
	assert.False(t, IsStackStateError(validation))
	assert.False(t, IsBehaviorError(validation))
	assert.False(t, IsPipelineOverflowError(validation))
}
