package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"deskhub/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      int
		kind      failure.Kind
		retryable bool
	}{
		{name: "validation", err: failure.Validation("attendees exceed capacity"), code: http.StatusBadRequest, kind: failure.KindValidation},
		{name: "bad request", err: failure.BadRequest(errors.New("unexpected EOF")), code: http.StatusBadRequest, kind: failure.KindValidation},
		{name: "conflict", err: failure.Conflict("slot taken"), code: http.StatusConflict, kind: failure.KindConflict},
		{name: "not found", err: failure.NotFound("booking not found"), code: http.StatusNotFound, kind: failure.KindNotFound},
		{name: "already cancelled", err: failure.AlreadyCancelled("booking already cancelled"), code: http.StatusConflict, kind: failure.KindAlreadyCancelled},
		{name: "concurrency", err: failure.Concurrency("room is busy, retry"), code: http.StatusServiceUnavailable, kind: failure.KindConcurrency, retryable: true},
		{name: "unauthorized", err: failure.Unauthorized("token expired"), code: http.StatusUnauthorized, kind: failure.KindUnauthorized},
		{name: "forbidden", err: failure.Forbidden("members only"), code: http.StatusForbidden, kind: failure.KindForbidden},
		{name: "restricted", err: failure.ResourceRestrictedError, code: http.StatusForbidden, kind: failure.KindForbidden},
		{name: "internal", err: failure.InternalError(errors.New("db down")), code: http.StatusInternalServerError, kind: failure.KindInternal},
		{name: "plain error", err: errors.New("boom"), code: http.StatusInternalServerError, kind: failure.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.kind, failure.GetKind(tt.err))
			assert.Equal(t, tt.retryable, failure.IsRetryable(tt.err))
		})
	}
}

func TestNilStaysNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	assert.False(t, failure.IsKind(nil, failure.KindUnknown))
}

func TestInternalError_HidesCause(t *testing.T) {
	err := failure.InternalError(errors.New("pq: password authentication failed"))

	assert.Equal(t, "Internal Server Error", err.Error())
}

func TestWrapped(t *testing.T) {
	err := fmt.Errorf("failed to create booking: %w", failure.Conflict("slot taken"))

	assert.True(t, failure.IsKind(err, failure.KindConflict))
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	fail, ok := failure.As(err)
	require.True(t, ok)
	assert.Equal(t, "slot taken", fail.Message)

	_, ok = failure.As(errors.New("plain"))
	assert.False(t, ok)
}
