package validators

import (
	"strings"

	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
)

// Request-shape checks only; the services enforce the full task rules.

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title", "is required")
	}
	if r.Category == "" {
		return apperrors.Validation("category", "is required")
	}
	if r.Type == "" {
		return apperrors.Validation("type", "is required")
	}
	return nil
}

func ValidateUpdateTaskRequest(r *dto.UpdateTaskRequest) error {
	if r.Title == nil && r.Description == nil && r.Category == nil && r.Type == nil &&
		r.Difficulty == nil && r.ExperienceReward == nil && r.RecurrenceIntervalDays == nil && r.ProjectID == nil {
		return apperrors.Validation("body", "at least one field must be provided")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperrors.Validation("title", "must not be empty")
	}
	return nil
}

func ValidateAddMissionRequest(r *dto.AddMissionRequest) error {
	if strings.TrimSpace(r.TaskID) == "" {
		return apperrors.Validation("task_id", "is required")
	}
	return nil
}
