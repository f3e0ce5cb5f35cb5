package errors

import (
	"fmt"
	"net/http"
)

var ErrInvalidJSON = &Exception{
	Kind:       KindValidation,
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}

// Validation builds a 400 exception for malformed input on field.
func Validation(field, message string) *Exception {
	return &Exception{
		Kind:       KindValidation,
		Message:    fmt.Sprintf("%s: %s", field, message),
		StatusCode: http.StatusBadRequest,
	}
}
