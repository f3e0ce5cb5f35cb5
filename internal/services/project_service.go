package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"nextlevel.com/nextlevel/internal/constants"
	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/events"
	"nextlevel.com/nextlevel/internal/leveling"
	"nextlevel.com/nextlevel/internal/lifecycle"
	model "nextlevel.com/nextlevel/internal/models"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

type ProjectService struct {
	store   *repository.Store
	rewards *RewardService
	logger  *slog.Logger
	now     func() time.Time
}

type ProjectCompletionResult struct {
	Project *model.Project `json:"project"`
	User    *model.User    `json:"user"`
	XP      leveling.Gain  `json:"xp"`
}

func NewProjectService(store *repository.Store, rewards *RewardService, logger *slog.Logger, now func() time.Time) *ProjectService {
	if now == nil {
		now = time.Now
	}
	return &ProjectService{
		store:   store,
		rewards: rewards,
		logger:  logger,
		now:     now,
	}
}

// CreateProject stores the project and its initial subtasks atomically.
func (s *ProjectService) CreateProject(ctx context.Context, userID string, req dto.CreateProjectRequest) (*model.Project, error) {
	project := &model.Project{
		UserID:           userID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Status:           constants.StatusActive,
		ExperienceReward: req.ExperienceReward,
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	subtasks := make([]*model.Task, 0, len(req.Tasks))
	for _, r := range req.Tasks {
		r.ProjectID = nil
		task := newTaskFromRequest(userID, r)
		if err := validateTask(task); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, task)
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Projects.Create(ctx, project); err != nil {
			return err
		}
		for _, task := range subtasks {
			task.ProjectID = &project.ID
			if err := tx.Tasks.Create(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	project.Tasks = make([]model.Task, 0, len(subtasks))
	for _, task := range subtasks {
		project.Tasks = append(project.Tasks, *task)
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	return s.store.Projects.ListByUser(ctx, userID)
}

func (s *ProjectService) GetProject(ctx context.Context, userID, id string) (*model.Project, error) {
	project, err := ownedProject(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Tasks = tasks
	return project, nil
}

func (s *ProjectService) ListSubtasks(ctx context.Context, userID, id string) ([]model.Task, error) {
	project, err := ownedProject(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	return s.store.Tasks.ListByProject(ctx, project.ID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, userID, id string, req dto.UpdateProjectRequest) (*model.Project, error) {
	project, err := ownedProject(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.ExperienceReward != nil {
		project.ExperienceReward = *req.ExperienceReward
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.store.Projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes the project with its tasks and their completions.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, id string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		project, err := ownedProject(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		taskIDs, err := tx.Tasks.IDsByProject(ctx, project.ID)
		if err != nil {
			return err
		}
		if err := tx.Completions.DeleteByTasks(ctx, taskIDs); err != nil {
			return err
		}
		if err := tx.Tasks.DeleteByProject(ctx, project.ID); err != nil {
			return err
		}
		return tx.Projects.Delete(ctx, project.ID)
	})
}

// CompleteProject grants the project reward once every ONCE subtask is DONE
// and every RECURRENT subtask is INACTIVE. Subtasks are not modified.
func (s *ProjectService) CompleteProject(ctx context.Context, userID, id string) (*ProjectCompletionResult, error) {
	var result *ProjectCompletionResult

	err := s.rewards.Serialize(ctx, userID, func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			project, err := ownedProject(ctx, tx, userID, id)
			if err != nil {
				return err
			}
			tasks, err := tx.Tasks.ListByProject(ctx, project.ID)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckProjectCompletable(project, tasks); err != nil {
				return err
			}

			moved, err := tx.Projects.TransitionStatus(ctx, project.ID, project.Status, constants.StatusDone)
			if err != nil {
				return err
			}
			if !moved {
				return apperrors.ErrProjectAlreadyCompleted
			}

			user, gain, err := s.rewards.Grant(ctx, tx, userID, project.ExperienceReward)
			if err != nil {
				return err
			}

			project.Status = constants.StatusDone
			project.Tasks = tasks
			result = &ProjectCompletionResult{Project: project, User: user, XP: gain}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	batch := []events.Event{{
		Type:       events.TypeProjectCompleted,
		UserID:     userID,
		ProjectID:  result.Project.ID,
		XPGained:   result.Project.ExperienceReward,
		TotalXP:    result.XP.NewTotalXP,
		NewLevel:   result.XP.NewLevel,
		OccurredAt: at,
	}}
	if result.XP.LeveledUp {
		batch = append(batch, levelUpEvent(result.User, result.XP, at))
	}
	s.rewards.Publish(ctx, batch...)

	s.logger.InfoContext(ctx, "project completed",
		slog.String("user_id", userID),
		slog.String("project_id", result.Project.ID),
		slog.Int64("xp", result.Project.ExperienceReward),
		slog.Bool("leveled_up", result.XP.LeveledUp),
	)
	return result, nil
}

func ownedProject(ctx context.Context, store *repository.Store, userID, id string) (*model.Project, error) {
	project, err := store.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return project, nil
}

func validateProject(project *model.Project) error {
	if project.Title == "" {
		return apperrors.Validation("title", "is required")
	}
	if project.ExperienceReward <= 0 || project.ExperienceReward > constants.MaxExperienceReward {
		return apperrors.Validation("experience_reward", "must be between 1 and 1000")
	}
	return nil
}
