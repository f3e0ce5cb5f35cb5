package errors

import "net/http"

var ErrOptimisticLock = &Exception{
	Kind:       KindConflict,
	Message:    "optimistic locking conflict",
	StatusCode: http.StatusConflict,
}

var ErrBusy = &Exception{
	Kind:       KindConflict,
	Message:    "another update for this user is in progress",
	StatusCode: http.StatusConflict,
}

var ErrSweepInProgress = &Exception{
	Kind:       KindConflict,
	Message:    "a recurrence sweep is already running",
	StatusCode: http.StatusConflict,
}
