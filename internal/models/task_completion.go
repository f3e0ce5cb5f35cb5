package model

import "time"

// TaskCompletion is append-only; rows go away only with their task.
type TaskCompletion struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID      string    `gorm:"index;size:36;not null" json:"task_id"`
	UserID      string    `gorm:"index;size:64;not null" json:"user_id"`
	CompletedAt time.Time `gorm:"index;not null" json:"completed_at"`
}
