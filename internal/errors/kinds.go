package errors

import "net/http"

// Kind markers. errors.Is(err, ErrNotFound) holds for every not-found exception.
var (
	ErrNotFound     = &Exception{Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrInvalidState = &Exception{Kind: KindInvalidState, StatusCode: http.StatusConflict}
	ErrValidation   = &Exception{Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrConflict     = &Exception{Kind: KindConflict, StatusCode: http.StatusConflict}
)

var ErrUnauthorized = &Exception{
	Kind:       KindUnauthorized,
	Message:    "authentication required",
	StatusCode: http.StatusUnauthorized,
}

var ErrForbidden = &Exception{
	Kind:       KindForbidden,
	Message:    "you do not own this resource",
	StatusCode: http.StatusForbidden,
}
