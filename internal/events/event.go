// Package events defines the domain events emitted after a completion commits.
package events

import "time"

const (
	TypeTaskCompleted    = "task.completed"
	TypeProjectCompleted = "project.completed"
	TypeUserLeveledUp    = "user.leveled_up"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	TaskID     string    `json:"task_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	XPGained   int64     `json:"xp_gained,omitempty"`
	TotalXP    int64     `json:"total_xp"`
	OldLevel   int       `json:"old_level,omitempty"`
	NewLevel   int       `json:"new_level"`
	OccurredAt time.Time `json:"occurred_at"`
}
