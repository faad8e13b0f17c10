package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"url":      "Invalid URL format",
	"uuid":     "Invalid identifier",
}

var paramMessages = map[string]string{
	"min": "Must be at least %s characters",
	"max": "Must not exceed %s characters",
	"len": "Must be exactly %s characters",
}

func messageFor(fe validator.FieldError) string {
	if format, ok := paramMessages[fe.Tag()]; ok && fe.Param() != "" {
		return fmt.Sprintf(format, fe.Param())
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

// fieldName prefers the json tag, then the form tag, so messages line up
// with whatever the client sent.
func fieldName(structType reflect.Type, goName string) string {
	if structType == nil {
		return goName
	}

	field, ok := structType.FieldByName(goName)
	if !ok {
		return goName
	}

	for _, key := range []string{"json", "form"} {
		if name, _, _ := strings.Cut(field.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return goName
}

// FormatValidationErrors turns binding errors into per-field messages. model
// is the struct that was bound and may be nil.
func FormatValidationErrors(err error, model any) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	out := make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, ValidationErrorResponse{
			Field:   fieldName(structType, fe.StructField()),
			Message: messageFor(fe),
		})
	}
	return out
}
