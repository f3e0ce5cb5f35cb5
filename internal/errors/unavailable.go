package errors

import "net/http"

// Features switched off by configuration.

var ErrWebhooksDisabled = &Exception{
	Kind:       KindUnavailable,
	Message:    "identity webhooks are not configured",
	StatusCode: http.StatusServiceUnavailable,
}

var ErrSuggestionsDisabled = &Exception{
	Kind:       KindUnavailable,
	Message:    "subtask suggestions are not configured",
	StatusCode: http.StatusServiceUnavailable,
}

var ErrNoUsableSuggestions = &Exception{
	Kind:       KindUpstream,
	Message:    "the suggestion model returned no usable subtasks",
	StatusCode: http.StatusBadGateway,
}
