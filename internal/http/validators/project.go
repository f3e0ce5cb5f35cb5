package validators

import (
	"fmt"
	"strings"

	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
)

const (
	maxSubtasksPerRequest  = 100
	maxDescriptionForModel = 2000
)

func ValidateCreateProjectRequest(r *dto.CreateProjectRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title", "is required")
	}
	if len(r.Tasks) > maxSubtasksPerRequest {
		return apperrors.Validation("tasks", fmt.Sprintf("at most %d subtasks per request", maxSubtasksPerRequest))
	}
	for i := range r.Tasks {
		if err := ValidateCreateTaskRequest(&r.Tasks[i]); err != nil {
			return apperrors.Validation(fmt.Sprintf("tasks[%d]", i), err.Error())
		}
	}
	return nil
}

func ValidateUpdateProjectRequest(r *dto.UpdateProjectRequest) error {
	if r.Title == nil && r.Description == nil && r.ExperienceReward == nil {
		return apperrors.Validation("body", "at least one field must be provided")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperrors.Validation("title", "must not be empty")
	}
	return nil
}

func ValidateSuggestSubtasksRequest(r *dto.SuggestSubtasksRequest) error {
	d := strings.TrimSpace(r.ProjectDescription)
	if d == "" {
		return apperrors.Validation("project_description", "is required")
	}
	if len(d) > maxDescriptionForModel {
		return apperrors.Validation("project_description", fmt.Sprintf("must be at most %d characters", maxDescriptionForModel))
	}
	return nil
}
