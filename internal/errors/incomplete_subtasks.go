package errors

import (
	"fmt"
	"net/http"
)

// Blocker is a subtask that keeps its project from being completed.
type Blocker struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type IncompleteSubtasks struct {
	Blockers []Blocker
}

func (e *IncompleteSubtasks) Error() string {
	return fmt.Sprintf("project has %d incomplete subtasks", len(e.Blockers))
}

func (e *IncompleteSubtasks) StatusCode() int {
	return http.StatusConflict
}

func (e *IncompleteSubtasks) Is(target error) bool {
	t, ok := target.(*Exception)
	return ok && t.Message == "" && t.Kind == KindIncompleteSubtasks
}

var ErrIncompleteSubtasks = &Exception{Kind: KindIncompleteSubtasks, StatusCode: http.StatusConflict}
