package postgres

import (
	"context"
	"errors"

	"deskhub/shared/constant"
	"deskhub/shared/failure"

	"github.com/lib/pq"
)

const (
	msgContention = "the room is being booked by someone else, please retry"
	msgOverlap    = "the requested time overlaps an existing booking"
	msgDuplicate  = "the record already exists"
	msgReference  = "the referenced record no longer exists"
)

// TranslateError maps Postgres contention and constraint errors onto the failure taxonomy.
// Errors that are already a Failure, or unknown, pass through unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return failure.Concurrency(msgContention) // nolint:wrapcheck
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeSerialization, constant.PqErrorCodeDeadlock, constant.PqErrorCodeLockNotAvailable:
		return failure.Concurrency(msgContention) // nolint:wrapcheck
	case constant.PqErrorCodeExclusionViolation:
		return failure.Conflict(msgOverlap) // nolint:wrapcheck
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict(msgDuplicate) // nolint:wrapcheck
	case constant.PqErrorCodeFkViolation:
		return failure.NotFound(msgReference) // nolint:wrapcheck
	}

	return err
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeSerialization
}
