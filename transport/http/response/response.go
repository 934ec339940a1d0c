package response

import (
	"encoding/json"
	"net/http"

	"deskhub/shared/constant"
	"deskhub/shared/failure"
	"deskhub/shared/logger"
)

const retryAfterSeconds = "1"

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

// Error is the body of every non 2xx response produced from an error.
type Error struct {
	Error *string      `json:"error,omitempty"`
	Kind  failure.Kind `json:"kind,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: &message})
}

func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: &payload})
}

// WithError renders a Failure with its code and kind. Other errors are logged and answered
// with a generic 500 so driver messages never reach the client. Retryable failures carry Retry-After.
func WithError(writer http.ResponseWriter, err error) {
	fail, ok := failure.As(err)
	if !ok {
		logger.ErrorWithStack(err)

		fail, _ = failure.As(failure.InternalError(err))
	}

	if fail.Retryable {
		writer.Header().Set(constant.ResponseHeaderRetryAfter, retryAfterSeconds)
	}

	write(writer, fail.Code, Error{Error: &fail.Message, Kind: fail.Kind})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
