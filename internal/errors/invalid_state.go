package errors

import "net/http"

var ErrTaskAlreadyCompleted = &Exception{
	Kind:       KindInvalidState,
	Message:    "task is already completed",
	StatusCode: http.StatusConflict,
}

var ErrProjectAlreadyCompleted = &Exception{
	Kind:       KindInvalidState,
	Message:    "project is already completed",
	StatusCode: http.StatusConflict,
}

var ErrInvalidTaskType = &Exception{
	Kind:       KindInvalidState,
	Message:    "only recurrent tasks can be closed",
	StatusCode: http.StatusConflict,
}

var ErrTaskNotInactive = &Exception{
	Kind:       KindInvalidState,
	Message:    "only inactive tasks can be reopened",
	StatusCode: http.StatusConflict,
}
