package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nextlevel.com/nextlevel/internal/constants"
	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
)

const (
	maxSuggestions       = 5
	maxSuggestedXPReward = 100
)

// SubtaskGenerator proposes subtasks for a free-text project description.
type SubtaskGenerator interface {
	SuggestSubtasks(ctx context.Context, description string) ([]dto.CreateTaskRequest, error)
}

type SuggestionService struct {
	generator SubtaskGenerator
	logger    *slog.Logger
}

// NewSuggestionService returns a service that reports ErrSuggestionsDisabled
// when generator is nil.
func NewSuggestionService(generator SubtaskGenerator, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{generator: generator, logger: logger}
}

// SuggestSubtasks asks the generator for subtasks and keeps at most five that
// pass the same rules as CreateTask. Nothing is persisted; callers submit the
// ones they want through CreateProject.
func (s *SuggestionService) SuggestSubtasks(ctx context.Context, userID, description string) ([]dto.CreateTaskRequest, error) {
	if s.generator == nil {
		return nil, apperrors.ErrSuggestionsDisabled
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.Validation("project_description", "is required")
	}

	raw, err := s.generator.SuggestSubtasks(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("suggest subtasks: %w", err)
	}

	suggestions := make([]dto.CreateTaskRequest, 0, maxSuggestions)
	for i, r := range raw {
		if len(suggestions) == maxSuggestions {
			break
		}
		r.ProjectID = nil
		if r.Category == "" {
			r.Category = constants.CategoryMiscellaneous
		}
		if r.Type == constants.TypeOnce {
			r.RecurrenceIntervalDays = nil
		}

		task := newTaskFromRequest(userID, r)
		err := validateTask(task)
		if err == nil && task.ExperienceReward > maxSuggestedXPReward {
			err = apperrors.Validation("experience_reward", fmt.Sprintf("must be at most %d for suggestions", maxSuggestedXPReward))
		}
		if err != nil {
			s.logger.WarnContext(ctx, "dropping suggested subtask",
				slog.Int("index", i),
				slog.String("title", r.Title),
				slog.Any("error", err),
			)
			continue
		}

		suggestions = append(suggestions, dto.CreateTaskRequest{
			Title:                  task.Title,
			Description:            task.Description,
			Category:               task.Category,
			Type:                   task.Type,
			Difficulty:             task.Difficulty,
			ExperienceReward:       task.ExperienceReward,
			RecurrenceIntervalDays: copyInt(task.RecurrenceIntervalDays),
		})
	}

	if len(suggestions) == 0 {
		return nil, apperrors.ErrNoUsableSuggestions
	}
	return suggestions, nil
}
