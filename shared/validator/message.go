package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// messages are keyed by tag, or by tag=param where one param needs its own wording.
var messages = map[string]string{
	"required":         "{field} is required",
	"required_without": "{field} is required when {param} is empty",
	"gte":              "{field} must be greater than or equal to {param}",
	"lte":              "{field} must be less than or equal to {param}",
	"gt":               "{field} must be greater than {param}",
	"oneof":            "{field} must be one of {param}",
	"max":              "{field} must be less than or equal to {param}",
	"min":              "{field} must be greater than or equal to {param}",
	"email":            "{field} must be a valid email address",
	"date":             "{field} must be a date formatted as YYYY-MM-DD",
	"clock":            "{field} must be a valid time formatted as HH:MM",
	"clock=grid":       "{field} must be a time on the half hour formatted as HH:MM",
	"uuid":             "{field} must be a valid UUID",
	"mimetypes":        "{field} must be one of {param}",
	"maxfilesize":      "{field} must not exceed {param} MB",
	"empty":            "{field} must be empty",
}

// message renders the first violation that has a known wording.
func message(err error) string {
	var violations val.ValidationErrors
	if !errors.As(err, &violations) {
		return err.Error()
	}

	for _, violation := range violations {
		template, ok := messages[violation.Tag()+"="+violation.Param()]
		if !ok {
			template, ok = messages[violation.Tag()]
		}

		if ok {
			return strings.NewReplacer("{field}", violation.Field(), "{param}", violation.Param()).Replace(template)
		}
	}

	return violations.Error()
}
