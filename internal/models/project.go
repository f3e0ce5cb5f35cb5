package model

import (
	"time"

	"nextlevel.com/nextlevel/internal/constants"
)

type Project struct {
	ID               string               `gorm:"primaryKey;size:36" json:"id"`
	UserID           string               `gorm:"index;size:64" json:"user_id"`
	Title            string               `gorm:"not null" json:"title"`
	Description      string               `json:"description"`
	Status           constants.TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	ExperienceReward int64                `gorm:"not null" json:"experience_reward"`
	CreatedAt        time.Time            `json:"created_at"`

	Tasks []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
