package errors

import (
	"errors"
	"net/http"
)

// Kind groups exceptions into the categories the HTTP layer reports.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindInvalidState       Kind = "invalid_state"
	KindIncompleteSubtasks Kind = "incomplete_subtasks"
	KindValidation         Kind = "validation_error"
	KindConflict           Kind = "conflict"
	KindUnavailable        Kind = "unavailable"
	KindUpstream           Kind = "upstream_error"
	KindInternal           Kind = "internal"
)

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// Is matches exceptions by identity, or by kind when the target is a bare
// kind marker such as ErrNotFound.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Message == "" && t.Kind == e.Kind
}

func StatusCode(err error) int {
	var subtasks *IncompleteSubtasks
	if errors.As(err, &subtasks) {
		return subtasks.StatusCode()
	}
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// KindOf reports the taxonomy kind of err; unknown errors are internal.
func KindOf(err error) Kind {
	var subtasks *IncompleteSubtasks
	if errors.As(err, &subtasks) {
		return KindIncompleteSubtasks
	}
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
