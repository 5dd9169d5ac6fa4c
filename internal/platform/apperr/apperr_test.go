package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesOnCode(t *testing.T) {
	sentinel := New(KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	err := sentinel.WithMessagef("booking %d not found", 42)

	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, "booking 42 not found", err.Error())

	other := New(KindNotFound, "ITEM_NOT_FOUND", "item not found")
	assert.False(t, errors.Is(err, other))
}

func TestIs_ThroughWrapping(t *testing.T) {
	sentinel := New(KindBadRequest, "NOT_WAITING", "")
	wrapped := fmt.Errorf("approve: %w", sentinel.WithMessage("booking already decided"))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, KindBadRequest, KindOf(wrapped))
	assert.Equal(t, "NOT_WAITING", CodeOf(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(err))
	assert.False(t, IsBadRequest(err))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("bad")
	assert.True(t, IsBadRequest(err))
	assert.Equal(t, "VALIDATION_ERROR", CodeOf(err))
	assert.Equal(t, "bad", err.Error())
}

func TestError_EmptyMessageFallsBackToCode(t *testing.T) {
	assert.Equal(t, "SOME_CODE", New(KindConflict, "SOME_CODE", "").Error())
}
