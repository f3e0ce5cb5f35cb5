package model

import (
	"time"

	"nextlevel.com/nextlevel/internal/constants"
)

type Task struct {
	ID                     string                 `gorm:"primaryKey;size:36" json:"id"`
	UserID                 string                 `gorm:"index;size:64" json:"user_id"`
	ProjectID              *string                `gorm:"index;size:36" json:"project_id,omitempty"`
	Title                  string                 `gorm:"not null" json:"title"`
	Description            string                 `json:"description"`
	Category               constants.TaskCategory `gorm:"type:varchar(20);not null" json:"category"`
	Type                   constants.TaskType     `gorm:"type:varchar(20);not null;index:idx_tasks_type_status" json:"type"`
	Status                 constants.TaskStatus   `gorm:"type:varchar(20);not null;index:idx_tasks_type_status" json:"status"`
	Difficulty             int                    `gorm:"not null" json:"difficulty"`
	ExperienceReward       int64                  `gorm:"not null" json:"experience_reward"`
	RecurrenceIntervalDays *int                   `json:"recurrence_interval_days,omitempty"`
	IsDefault              bool                   `gorm:"not null;default:false;index" json:"is_default"`
	CreatedAt              time.Time              `json:"created_at"`

	LastCompletedAt *time.Time `gorm:"-" json:"last_completed_at,omitempty"`
}

func (t *Task) IsRecurrent() bool {
	return t.Type == constants.TypeRecurrent
}
