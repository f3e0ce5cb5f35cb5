package services

import (
	"context"
	"log/slog"
	"sort"
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

type TaskService struct {
	store   *repository.Store
	rewards *RewardService
	logger  *slog.Logger
	now     func() time.Time
	loc     *time.Location
}

// TaskCompletionResult is what a successful completion reports back.
type TaskCompletionResult struct {
	Task *model.Task   `json:"task"`
	User *model.User   `json:"user"`
	XP   leveling.Gain `json:"xp"`
}

func NewTaskService(
	store *repository.Store,
	rewards *RewardService,
	logger *slog.Logger,
	now func() time.Time,
	loc *time.Location,
) *TaskService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		store:   store,
		rewards: rewards,
		logger:  logger,
		now:     now,
		loc:     loc,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, req dto.CreateTaskRequest) (*model.Task, error) {
	task := newTaskFromRequest(userID, req)
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if task.ProjectID != nil {
		if _, err := ownedProject(ctx, s.store, userID, *task.ProjectID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddMission copies a catalog task, or one of the user's own tasks, into a
// fresh ACTIVE task owned by the user.
func (s *TaskService) AddMission(ctx context.Context, userID, sourceID string) (*model.Task, error) {
	source, err := s.store.Tasks.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !source.IsDefault && source.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	clone := &model.Task{
		UserID:                 userID,
		Title:                  source.Title,
		Description:            source.Description,
		Category:               source.Category,
		Type:                   source.Type,
		Status:                 constants.StatusActive,
		Difficulty:             source.Difficulty,
		ExperienceReward:       source.ExperienceReward,
		RecurrenceIntervalDays: copyInt(source.RecurrenceIntervalDays),
	}
	if err := s.store.Tasks.Create(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// ListTasks returns the user's tasks, each with its latest completion time.
func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.store.Tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachLastCompletion(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) ListDefaultTasks(ctx context.Context) ([]model.Task, error) {
	return s.store.Tasks.ListDefaults(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := ownedTask(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.Completions.Latest(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		task.LastCompletedAt = &latest.CompletedAt
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, id string, req dto.UpdateTaskRequest) (*model.Task, error) {
	task, err := ownedTask(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}

	applyTaskUpdate(task, req)
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if task.ProjectID != nil {
		if _, err := ownedProject(ctx, s.store, userID, *task.ProjectID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task and its completion history together.
func (s *TaskService) DeleteTask(ctx context.Context, userID, id string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		task, err := ownedTask(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Completions.DeleteByTasks(ctx, []string{task.ID}); err != nil {
			return err
		}
		return tx.Tasks.Delete(ctx, task.ID)
	})
}

// CompleteTask marks the task DONE, logs the completion and grants its
// reward in one transaction. A task that is already DONE is rejected and
// grants nothing.
func (s *TaskService) CompleteTask(ctx context.Context, userID, id string) (*TaskCompletionResult, error) {
	var result *TaskCompletionResult

	err := s.rewards.Serialize(ctx, userID, func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			task, err := ownedTask(ctx, tx, userID, id)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckCompletable(task); err != nil {
				return err
			}

			moved, err := tx.Tasks.TransitionStatus(ctx, task.ID, task.Status, constants.StatusDone)
			if err != nil {
				return err
			}
			if !moved {
				return apperrors.ErrTaskAlreadyCompleted
			}

			completion, err := tx.Completions.Create(ctx, task.ID, userID, s.now())
			if err != nil {
				return err
			}

			user, gain, err := s.rewards.Grant(ctx, tx, userID, task.ExperienceReward)
			if err != nil {
				return err
			}

			task.Status = constants.StatusDone
			task.LastCompletedAt = &completion.CompletedAt
			result = &TaskCompletionResult{Task: task, User: user, XP: gain}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	at := *result.Task.LastCompletedAt
	batch := []events.Event{{
		Type:       events.TypeTaskCompleted,
		UserID:     userID,
		TaskID:     result.Task.ID,
		XPGained:   result.Task.ExperienceReward,
		TotalXP:    result.XP.NewTotalXP,
		NewLevel:   result.XP.NewLevel,
		OccurredAt: at,
	}}
	if result.XP.LeveledUp {
		batch = append(batch, levelUpEvent(result.User, result.XP, at))
	}
	s.rewards.Publish(ctx, batch...)

	s.logger.InfoContext(ctx, "task completed",
		slog.String("user_id", userID),
		slog.String("task_id", result.Task.ID),
		slog.Int64("xp", result.Task.ExperienceReward),
		slog.Bool("leveled_up", result.XP.LeveledUp),
	)
	return result, nil
}

// CloseTask retires a recurrent task. Closing an INACTIVE task is a no-op.
func (s *TaskService) CloseTask(ctx context.Context, userID, id string) (*model.Task, error) {
	var task *model.Task

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = ownedTask(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckClosable(task); err != nil {
			return err
		}
		if task.Status == constants.StatusInactive {
			return nil
		}

		moved, err := tx.Tasks.TransitionStatus(ctx, task.ID, task.Status, constants.StatusInactive)
		if err != nil {
			return err
		}
		if !moved {
			return apperrors.ErrOptimisticLock
		}
		task.Status = constants.StatusInactive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ReopenTask puts a closed task back into rotation.
func (s *TaskService) ReopenTask(ctx context.Context, userID, id string) (*model.Task, error) {
	var task *model.Task

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		task, err = ownedTask(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckReopenable(task); err != nil {
			return err
		}

		moved, err := tx.Tasks.TransitionStatus(ctx, task.ID, constants.StatusInactive, constants.StatusActive)
		if err != nil {
			return err
		}
		if !moved {
			return apperrors.ErrTaskNotInactive
		}
		task.Status = constants.StatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CompletionHistory groups the user's completions by calendar date in the
// service timezone, oldest day first.
func (s *TaskService) CompletionHistory(ctx context.Context, userID string) ([]dto.CompletionDay, error) {
	completions, err := s.store.Completions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(completions) == 0 {
		return []dto.CompletionDay{}, nil
	}

	ids := make([]string, 0, len(completions))
	seen := make(map[string]bool, len(completions))
	for _, c := range completions {
		if !seen[c.TaskID] {
			seen[c.TaskID] = true
			ids = append(ids, c.TaskID)
		}
	}
	tasks, err := s.store.Tasks.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*dto.CompletionDay)
	var dates []string
	for _, c := range completions {
		task, ok := tasks[c.TaskID]
		if !ok {
			continue
		}
		date := c.CompletedAt.In(s.loc).Format(time.DateOnly)
		day, ok := byDate[date]
		if !ok {
			day = &dto.CompletionDay{Date: date}
			byDate[date] = day
			dates = append(dates, date)
		}
		day.Completions = append(day.Completions, dto.CompletionEntry{
			TaskID:           task.ID,
			Title:            task.Title,
			Category:         task.Category,
			ExperienceReward: task.ExperienceReward,
			CompletedAt:      c.CompletedAt,
		})
		day.Count++
		day.Experience += task.ExperienceReward
	}

	sort.Strings(dates)
	history := make([]dto.CompletionDay, 0, len(dates))
	for _, date := range dates {
		history = append(history, *byDate[date])
	}
	return history, nil
}

func (s *TaskService) attachLastCompletion(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	latest, err := s.store.Completions.LatestForTasks(ctx, ids)
	if err != nil {
		return err
	}
	for i := range tasks {
		if at, ok := latest[tasks[i].ID]; ok {
			at := at
			tasks[i].LastCompletedAt = &at
		}
	}
	return nil
}

func ownedTask(ctx context.Context, store *repository.Store, userID, id string) (*model.Task, error) {
	task, err := store.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return task, nil
}

func newTaskFromRequest(userID string, req dto.CreateTaskRequest) *model.Task {
	task := &model.Task{
		UserID:                 userID,
		Title:                  strings.TrimSpace(req.Title),
		Description:            strings.TrimSpace(req.Description),
		Category:               req.Category,
		Type:                   req.Type,
		Status:                 constants.StatusActive,
		Difficulty:             req.Difficulty,
		ExperienceReward:       req.ExperienceReward,
		RecurrenceIntervalDays: copyInt(req.RecurrenceIntervalDays),
	}
	if req.ProjectID != nil && *req.ProjectID != "" {
		id := *req.ProjectID
		task.ProjectID = &id
	}
	return task
}

func applyTaskUpdate(task *model.Task, req dto.UpdateTaskRequest) {
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Type != nil {
		task.Type = *req.Type
	}
	if req.Difficulty != nil {
		task.Difficulty = *req.Difficulty
	}
	if req.ExperienceReward != nil {
		task.ExperienceReward = *req.ExperienceReward
	}
	if req.RecurrenceIntervalDays != nil {
		task.RecurrenceIntervalDays = copyInt(req.RecurrenceIntervalDays)
	}
	if task.Type == constants.TypeOnce {
		task.RecurrenceIntervalDays = nil
	}
	if req.ProjectID != nil {
		if *req.ProjectID == "" {
			task.ProjectID = nil
		} else {
			id := *req.ProjectID
			task.ProjectID = &id
		}
	}
}

func validateTask(task *model.Task) error {
	if task.Title == "" {
		return apperrors.Validation("title", "is required")
	}
	if !task.Category.Valid() {
		return apperrors.Validation("category", "must be one of HEALTH, ENTERTAINMENT, SOCIAL, NATURE, MISCELLANEOUS")
	}
	if !task.Type.Valid() {
		return apperrors.Validation("type", "must be ONCE or RECURRENT")
	}
	if task.Difficulty < constants.MinDifficulty || task.Difficulty > constants.MaxDifficulty {
		return apperrors.Validation("difficulty", "must be between 1 and 5")
	}
	if task.ExperienceReward <= 0 || task.ExperienceReward > constants.MaxExperienceReward {
		return apperrors.Validation("experience_reward", "must be between 1 and 1000")
	}
	switch task.Type {
	case constants.TypeRecurrent:
		if task.RecurrenceIntervalDays == nil || *task.RecurrenceIntervalDays <= 0 {
			return apperrors.Validation("recurrence_interval_days", "must be greater than 0 for recurrent tasks")
		}
	case constants.TypeOnce:
		if task.RecurrenceIntervalDays != nil {
			return apperrors.Validation("recurrence_interval_days", "must be empty for one-off tasks")
		}
	}
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
