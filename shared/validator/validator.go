package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strconv"
	"strings"
	"time"

	"deskhub/shared/constant"
	"deskhub/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const (
	clockGridMinutes = 30
	megabyte         = 1 << 20
)

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	custom := map[string]val.Func{
		"empty":       func(fl val.FieldLevel) bool { return fl.Field().IsZero() },
		"mimetypes":   validMimetype,
		"maxfilesize": validFileSize,
		"date":        validDate,
		"clock":       validClock,
	}

	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

func fileHeader(field val.FieldLevel) (*multipart.FileHeader, bool) {
	switch file := field.Field().Interface().(type) {
	case multipart.FileHeader:
		return &file, true
	case *multipart.FileHeader:
		return file, file != nil
	default:
		return nil, false
	}
}

// validMimetype checks the declared Content-Type of an upload against a space separated list.
func validMimetype(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
}

// validFileSize caps an upload at the given number of megabytes.
func validFileSize(field val.FieldLevel) bool {
	file, ok := fileHeader(field)
	if !ok {
		return false
	}

	maxMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return file.Size <= int64(maxMB*megabyte)
}

func validDate(field val.FieldLevel) bool {
	_, err := time.Parse(constant.DateLayout, field.Field().String())

	return err == nil
}

// validClock accepts HH:MM or HH:MM:SS. With the "grid" param the time must also sit on a
// half hour boundary.
func validClock(field val.FieldLevel) bool {
	value := field.Field().String()

	parsed, err := time.Parse(constant.ClockLayout, value)
	if err != nil {
		if parsed, err = time.Parse(time.TimeOnly, value); err != nil {
			return false
		}
	}

	if field.Param() != "grid" {
		return true
	}

	return parsed.Second() == 0 && parsed.Minute()%clockGridMinutes == 0
}

// Validate decodes a JSON body into data and validates it. Both failures are reported as bad requests.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateStruct reports the first broken rule of data as a validation failure.
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.Validation(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.Validation(message(err)) //nolint:wrapcheck
	}

	return nil
}
