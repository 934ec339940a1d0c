package failure

import (
	"errors"
	"net/http"
)

// Kind classifies a Failure independently of the HTTP code it is rendered with.
type Kind string

const (
	KindUnknown          Kind = ""
	KindValidation       Kind = "validation"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindAlreadyCancelled Kind = "already_cancelled"
	KindConcurrency      Kind = "concurrency"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindInternal         Kind = "internal"
)

// Failure carries a client facing message with the HTTP code it maps to.
type Failure struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Kind      Kind   `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

var (
	ForbiddenError          = newFailure(http.StatusForbidden, KindForbidden, "You don't have the required permissions")
	ResourceRestrictedError = newFailure(http.StatusForbidden, KindForbidden, "You don't have permission to access this resource")
)

func newFailure(code int, kind Kind, msg string) *Failure {
	return &Failure{Code: code, Message: msg, Kind: kind}
}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest turns a decoding or parsing error into a validation failure. nil stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, KindValidation, err.Error())
}

// Validation reports a request that breaks a booking or room rule.
func Validation(msg string) error {
	return newFailure(http.StatusBadRequest, KindValidation, msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, KindUnauthorized, msg)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, KindForbidden, msg)
}

// InternalError hides err behind a generic message. nil stays nil.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusInternalServerError, KindInternal, http.StatusText(http.StatusInternalServerError))
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, KindNotFound, msg)
}

// Conflict reports a request that collides with existing state, e.g. an overlapping slot.
func Conflict(msg string) error {
	return newFailure(http.StatusConflict, KindConflict, msg)
}

func AlreadyCancelled(msg string) error {
	return newFailure(http.StatusConflict, KindAlreadyCancelled, msg)
}

// Concurrency reports lost lock or serialization races. The whole operation may be retried.
func Concurrency(msg string) error {
	fail := newFailure(http.StatusServiceUnavailable, KindConcurrency, msg)
	fail.Retryable = true

	return fail
}

// As returns the Failure in err's chain, if any.
func As(err error) (*Failure, bool) {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail, true
	}

	return nil, false
}

// GetCode returns the HTTP code of err, 500 for errors that are not a Failure.
func GetCode(err error) int {
	if fail, ok := As(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the classification of an error, KindUnknown for errors that are not a Failure.
func GetKind(err error) Kind {
	if fail, ok := As(err); ok {
		return fail.Kind
	}

	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}

// IsRetryable reports whether the failed operation may be retried as a whole.
func IsRetryable(err error) bool {
	fail, ok := As(err)

	return ok && fail.Retryable
}
