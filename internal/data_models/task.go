package dto

import (
	"time"

	"nextlevel.com/nextlevel/internal/constants"
	model "nextlevel.com/nextlevel/internal/models"
)

type CreateTaskRequest struct {
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	Category               constants.TaskCategory `json:"category"`
	Type                   constants.TaskType     `json:"type"`
	Difficulty             int                    `json:"difficulty"`
	ExperienceReward       int64                  `json:"experience_reward"`
	RecurrenceIntervalDays *int                   `json:"recurrence_interval_days"`
	ProjectID              *string                `json:"project_id"`
}

// UpdateTaskRequest carries only the fields to change. An empty ProjectID
// detaches the task from its project.
type UpdateTaskRequest struct {
	Title                  *string                 `json:"title"`
	Description            *string                 `json:"description"`
	Category               *constants.TaskCategory `json:"category"`
	Type                   *constants.TaskType     `json:"type"`
	Difficulty             *int                    `json:"difficulty"`
	ExperienceReward       *int64                  `json:"experience_reward"`
	RecurrenceIntervalDays *int                    `json:"recurrence_interval_days"`
	ProjectID              *string                 `json:"project_id"`
}

type AddMissionRequest struct {
	TaskID string `json:"task_id"`
}

type TaskListResponse struct {
	Count int          `json:"count"`
	Tasks []model.Task `json:"tasks"`
}

type CompletionEntry struct {
	TaskID           string                 `json:"task_id"`
	Title            string                 `json:"title"`
	Category         constants.TaskCategory `json:"category"`
	ExperienceReward int64                  `json:"experience_reward"`
	CompletedAt      time.Time              `json:"completed_at"`
}

// CompletionDay groups completions by calendar date (YYYY-MM-DD).
type CompletionDay struct {
	Date        string            `json:"date"`
	Count       int               `json:"count"`
	Experience  int64             `json:"experience"`
	Completions []CompletionEntry `json:"completions"`
}

func NewTaskListResponse(tasks []model.Task) TaskListResponse {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return TaskListResponse{Count: len(tasks), Tasks: tasks}
}
