package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nextlevel.com/nextlevel/internal/constants"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	model "nextlevel.com/nextlevel/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, false).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list project tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListDefaults(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		Order("category asc, title asc").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list default tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountDefaults(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("is_default = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count default tasks: %w", err)
	}
	return n, nil
}

// ListRecurrentDone returns the sweep candidates.
func (r *TaskRepository) ListRecurrentDone(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", constants.TypeRecurrent, constants.StatusDone).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list recurrent done tasks: %w", err)
	}
	return tasks, nil
}

// Update writes the editable fields. Status is left to TransitionStatus.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":                    task.Title,
			"description":              task.Description,
			"category":                 task.Category,
			"type":                     task.Type,
			"difficulty":               task.Difficulty,
			"experience_reward":        task.ExperienceReward,
			"recurrence_interval_days": task.RecurrenceIntervalDays,
			"project_id":               task.ProjectID,
		})
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// TransitionStatus moves a task from one status to another only if it is
// still in from. It reports false when another writer got there first.
func (r *TaskRepository) TransitionStatus(ctx context.Context, id string, from, to constants.TaskStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("transition task %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ActivateRecurrent flips DONE recurrent tasks in ids back to ACTIVE. Tasks
// that changed state since they were read are left untouched.
func (r *TaskRepository) ActivateRecurrent(ctx context.Context, ids []string) (int64, error) {
	var updated int64
	for _, batch := range chunk(ids, maxBatchParams) {
		res := r.db.WithContext(ctx).Model(&model.Task{}).
			Where("id IN ? AND type = ? AND status = ?", batch, constants.TypeRecurrent, constants.StatusDone).
			Update("status", constants.StatusActive)
		if res.Error != nil {
			return 0, fmt.Errorf("activate recurrent tasks: %w", res.Error)
		}
		updated += res.RowsAffected
	}
	return updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) IDsByProject(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("project_id = ?", projectID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list project task ids: %w", err)
	}
	return ids, nil
}

func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, "project_id = ?", projectID).Error; err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, "user_id = ? AND is_default = ?", userID, false).Error; err != nil {
		return fmt.Errorf("delete user tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByIDs(ctx context.Context, ids []string) (map[string]model.Task, error) {
	found := make(map[string]model.Task, len(ids))
	for _, batch := range chunk(ids, maxBatchParams) {
		var tasks []model.Task
		if err := r.db.WithContext(ctx).Where("id IN ?", batch).Find(&tasks).Error; err != nil {
			return nil, fmt.Errorf("find tasks: %w", err)
		}
		for _, task := range tasks {
			found[task.ID] = task
		}
	}
	return found, nil
}
