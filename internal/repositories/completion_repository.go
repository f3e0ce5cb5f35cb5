package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "nextlevel.com/nextlevel/internal/models"
)

type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (r *CompletionRepository) Create(ctx context.Context, taskID, userID string, at time.Time) (*model.TaskCompletion, error) {
	completion := &model.TaskCompletion{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		UserID:      userID,
		CompletedAt: at.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}
	return completion, nil
}

// Latest returns the most recent completion of a task, or nil if it was
// never completed.
func (r *CompletionRepository) Latest(ctx context.Context, taskID string) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("completed_at desc").
		First(&completion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completion: %w", err)
	}
	return &completion, nil
}

// LatestForTasks returns the latest completion time per task id. Tasks never
// completed are absent from the map.
func (r *CompletionRepository) LatestForTasks(ctx context.Context, taskIDs []string) (map[string]time.Time, error) {
	latest := make(map[string]time.Time, len(taskIDs))

	for _, batch := range chunk(taskIDs, maxBatchParams) {
		var rows []model.TaskCompletion
		err := r.db.WithContext(ctx).
			Where("task_id IN ?", batch).
			Where("completed_at = (SELECT MAX(c2.completed_at) FROM task_completions c2 WHERE c2.task_id = task_completions.task_id)").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("latest completions: %w", err)
		}
		for _, row := range rows {
			if prev, ok := latest[row.TaskID]; !ok || row.CompletedAt.After(prev) {
				latest[row.TaskID] = row.CompletedAt
			}
		}
	}

	return latest, nil
}

func (r *CompletionRepository) ListByUser(ctx context.Context, userID string) ([]model.TaskCompletion, error) {
	var rows []model.TaskCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return rows, nil
}

func (r *CompletionRepository) DeleteByTasks(ctx context.Context, taskIDs []string) error {
	for _, batch := range chunk(taskIDs, maxBatchParams) {
		if err := r.db.WithContext(ctx).Delete(&model.TaskCompletion{}, "task_id IN ?", batch).Error; err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
	}
	return nil
}

func (r *CompletionRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.TaskCompletion{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("delete user completions: %w", err)
	}
	return nil
}
