package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "nextlevel.com/nextlevel/internal/configs"
	"nextlevel.com/nextlevel/internal/constants"
	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/events"
	"nextlevel.com/nextlevel/internal/locks"
	model "nextlevel.com/nextlevel/internal/models"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, batch ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, batch...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	locker    *locks.LocalLocker
	publisher *recordingPublisher
	clock     *fakeClock
	tasks     *TaskService
	projects  *ProjectService
	users     *UserService
	sweeper   *RecurrenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	store := repository.NewStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locker := locks.NewLocalLocker()
	publisher := &recordingPublisher{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}

	rewards := NewRewardService(locker, publisher, logger, 10*time.Second, 5*time.Second)

	return &fixture{
		db:        db,
		store:     store,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		tasks:     NewTaskService(store, rewards, logger, clock.Now, time.UTC),
		projects:  NewProjectService(store, rewards, logger, clock.Now),
		users:     NewUserService(store, logger),
		sweeper:   NewRecurrenceService(store, locker, logger, clock.Now, time.UTC),
	}
}

func intPtr(v int) *int { return &v }

func onceRequest(title string, reward int64) dto.CreateTaskRequest {
	return dto.CreateTaskRequest{
		Title:            title,
		Category:         constants.CategoryHealth,
		Type:             constants.TypeOnce,
		Difficulty:       2,
		ExperienceReward: reward,
	}
}

func recurrentRequest(title string, reward int64, days int) dto.CreateTaskRequest {
	req := onceRequest(title, reward)
	req.Type = constants.TypeRecurrent
	req.RecurrenceIntervalDays = intPtr(days)
	return req
}

func (f *fixture) createTask(t *testing.T, userID string, req dto.CreateTaskRequest) *model.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), userID, req)
	require.NoError(t, err)
	return task
}

func (f *fixture) setExperience(t *testing.T, userID string, xp int64) {
	t.Helper()
	ctx := context.Background()
	user, _, err := f.store.Users.Create(ctx, userID)
	require.NoError(t, err)
	user.Experience = xp
	require.NoError(t, f.store.Users.UpdateProgress(ctx, user))
}

func (f *fixture) completionCount(t *testing.T, taskID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.TaskCompletion{}).Where("task_id = ?", taskID).Count(&n).Error)
	return n
}

func TestCompleteTask_GrantsRewardWithoutLevelUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.users.RegisterUser(ctx, "user_1")
	require.NoError(t, err)

	task := f.createTask(t, "user_1", onceRequest("Drink water", 50))

	result, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	assert.Equal(t, constants.StatusDone, result.Task.Status)
	assert.Equal(t, int64(50), result.XP.NewTotalXP)
	assert.Equal(t, 1, result.XP.NewLevel)
	assert.False(t, result.XP.LeveledUp)
	assert.Equal(t, int64(50), result.User.Experience)
	require.NotNil(t, result.Task.LastCompletedAt)
	assert.True(t, result.Task.LastCompletedAt.Equal(f.clock.Now()))

	stored, err := f.store.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusDone, stored.Status)
	assert.Equal(t, int64(1), f.completionCount(t, task.ID))
	assert.Equal(t, []string{events.TypeTaskCompleted}, f.publisher.types())
}

func TestCompleteTask_LevelsUpAndPersistsLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setExperience(t, "user_1", 240)

	task := f.createTask(t, "user_1", onceRequest("Run 5k", 50))

	result, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(290), result.XP.NewTotalXP)
	assert.Equal(t, 1, result.XP.OldLevel)
	assert.Equal(t, 2, result.XP.NewLevel)
	assert.True(t, result.XP.LeveledUp)

	user, err := f.store.Users.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(290), user.Experience)
	assert.Equal(t, 2, user.Level)

	assert.Equal(t, []string{events.TypeTaskCompleted, events.TypeUserLeveledUp}, f.publisher.types())
}

func TestCompleteTask_AlreadyDoneGrantsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", onceRequest("Read a chapter", 40))

	_, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	_, err = f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.ErrorIs(t, err, apperrors.ErrTaskAlreadyCompleted)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	user, err := f.store.Users.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), user.Experience)
	assert.Equal(t, int64(1), f.completionCount(t, task.ID))
}

func TestCompleteTask_ConcurrentRequestsGrantOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", onceRequest("Meditate", 30))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrTaskAlreadyCompleted):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	user, err := f.store.Users.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), user.Experience)
	assert.Equal(t, int64(1), f.completionCount(t, task.ID))
}

func TestCompleteTask_ConcurrentTasksLoseNoXP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 6
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.createTask(t, "user_1", onceRequest("Task", 100)).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.tasks.CompleteTask(ctx, "user_1", id)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	user, err := f.store.Users.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), user.Experience)
	// 246 + 417 = 663 > 600
	assert.Equal(t, 2, user.Level)
}

func TestCompleteTask_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "owner", onceRequest("Private", 10))

	_, err := f.tasks.CompleteTask(ctx, "intruder", task.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.tasks.CompleteTask(ctx, "owner", "missing-id")
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)

	assert.Equal(t, int64(0), f.completionCount(t, task.ID))
}

func TestCompleteTask_BusyUserLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", onceRequest("Stretch", 10))

	held, err := f.locker.TryLock(ctx, locks.UserKey("user_1"), time.Minute)
	require.NoError(t, err)
	defer func() { _ = held.Release(ctx) }()

	rewards := NewRewardService(f.locker, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second, 50*time.Millisecond)
	svc := NewTaskService(f.store, rewards, slog.New(slog.NewTextHandler(io.Discard, nil)), f.clock.Now, time.UTC)

	_, err = svc.CompleteTask(ctx, "user_1", task.ID)
	assert.ErrorIs(t, err, apperrors.ErrBusy)

	stored, err := f.store.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusActive, stored.Status)
}

func TestCloseTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("one-off task is rejected", func(t *testing.T) {
		task := f.createTask(t, "user_1", onceRequest("Once", 10))
		_, err := f.tasks.CloseTask(ctx, "user_1", task.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTaskType)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("recurrent task closes from ACTIVE or DONE", func(t *testing.T) {
		active := f.createTask(t, "user_1", recurrentRequest("Walk", 10, 1))
		closed, err := f.tasks.CloseTask(ctx, "user_1", active.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StatusInactive, closed.Status)

		done := f.createTask(t, "user_1", recurrentRequest("Swim", 10, 3))
		_, err = f.tasks.CompleteTask(ctx, "user_1", done.ID)
		require.NoError(t, err)
		closed, err = f.tasks.CloseTask(ctx, "user_1", done.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StatusInactive, closed.Status)

		again, err := f.tasks.CloseTask(ctx, "user_1", done.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StatusInactive, again.Status)
	})

	t.Run("close grants no xp", func(t *testing.T) {
		_, err := f.store.Users.FindByID(ctx, "nobody")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

		task := f.createTask(t, "nobody", recurrentRequest("Journal", 10, 1))
		_, err = f.tasks.CloseTask(ctx, "nobody", task.ID)
		require.NoError(t, err)

		_, err = f.store.Users.FindByID(ctx, "nobody")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestReopenTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", recurrentRequest("Garden", 10, 2))

	_, err := f.tasks.ReopenTask(ctx, "user_1", task.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotInactive)

	_, err = f.tasks.CloseTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	reopened, err := f.tasks.ReopenTask(ctx, "user_1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusActive, reopened.Status)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *dto.CreateTaskRequest)
		field  string
	}{
		{"missing title", func(r *dto.CreateTaskRequest) { r.Title = "  " }, "title"},
		{"unknown category", func(r *dto.CreateTaskRequest) { r.Category = "WORK" }, "category"},
		{"unknown type", func(r *dto.CreateTaskRequest) { r.Type = "WEEKLY" }, "type"},
		{"difficulty too low", func(r *dto.CreateTaskRequest) { r.Difficulty = 0 }, "difficulty"},
		{"difficulty too high", func(r *dto.CreateTaskRequest) { r.Difficulty = 6 }, "difficulty"},
		{"non-positive reward", func(r *dto.CreateTaskRequest) { r.ExperienceReward = 0 }, "experience_reward"},
		{"reward above cap", func(r *dto.CreateTaskRequest) { r.ExperienceReward = constants.MaxExperienceReward + 1 }, "experience_reward"},
		{"reward near int64 max", func(r *dto.CreateTaskRequest) { r.ExperienceReward = math.MaxInt64 }, "experience_reward"},
		{"interval on one-off", func(r *dto.CreateTaskRequest) { r.RecurrenceIntervalDays = intPtr(3) }, "recurrence_interval_days"},
		{"recurrent without interval", func(r *dto.CreateTaskRequest) { r.Type = constants.TypeRecurrent }, "recurrence_interval_days"},
		{"recurrent with zero interval", func(r *dto.CreateTaskRequest) {
			r.Type = constants.TypeRecurrent
			r.RecurrenceIntervalDays = intPtr(0)
		}, "recurrence_interval_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := onceRequest("Valid", 10)
			tt.mutate(&req)

			_, err := f.tasks.CreateTask(ctx, "user_1", req)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCreateTask_ForeignProjectIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.CreateProject(ctx, "owner", dto.CreateProjectRequest{Title: "Mine", ExperienceReward: 100})
	require.NoError(t, err)

	req := onceRequest("Sneaky", 10)
	req.ProjectID = &project.ID
	_, err = f.tasks.CreateTask(ctx, "intruder", req)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAddMission_ClonesTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	template := &model.Task{
		Title:                  "Call a friend",
		Description:            "Catch up with someone",
		Category:               constants.CategorySocial,
		Type:                   constants.TypeRecurrent,
		Status:                 constants.StatusActive,
		Difficulty:             1,
		ExperienceReward:       20,
		RecurrenceIntervalDays: intPtr(7),
		IsDefault:              true,
	}
	require.NoError(t, f.store.Tasks.Create(ctx, template))

	clone, err := f.tasks.AddMission(ctx, "user_1", template.ID)
	require.NoError(t, err)

	assert.NotEqual(t, template.ID, clone.ID)
	assert.Equal(t, "user_1", clone.UserID)
	assert.False(t, clone.IsDefault)
	assert.Equal(t, constants.StatusActive, clone.Status)
	assert.Equal(t, template.Title, clone.Title)
	assert.Equal(t, template.Category, clone.Category)
	assert.Equal(t, 7, *clone.RecurrenceIntervalDays)

	other := f.createTask(t, "someone_else", onceRequest("Theirs", 10))
	_, err = f.tasks.AddMission(ctx, "user_1", other.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	defaults, err := f.tasks.ListDefaultTasks(ctx)
	require.NoError(t, err)
	require.Len(t, defaults, 1)

	mine, err := f.tasks.ListTasks(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, clone.ID, mine[0].ID)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", recurrentRequest("Yoga", 15, 2))

	toOnce := constants.TypeOnce
	title := "Yoga class"
	updated, err := f.tasks.UpdateTask(ctx, "user_1", task.ID, dto.UpdateTaskRequest{Type: &toOnce, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, constants.TypeOnce, updated.Type)
	assert.Nil(t, updated.RecurrenceIntervalDays)
	assert.Equal(t, constants.StatusActive, updated.Status)

	stored, err := f.store.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yoga class", stored.Title)
	assert.Nil(t, stored.RecurrenceIntervalDays)

	toRecurrent := constants.TypeRecurrent
	_, err = f.tasks.UpdateTask(ctx, "user_1", task.ID, dto.UpdateTaskRequest{Type: &toRecurrent})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	badDifficulty := 9
	_, err = f.tasks.UpdateTask(ctx, "user_1", task.ID, dto.UpdateTaskRequest{Difficulty: &badDifficulty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.tasks.UpdateTask(ctx, "intruder", task.ID, dto.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteTask_RemovesCompletions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", onceRequest("Clean desk", 10))
	_, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.tasks.DeleteTask(ctx, "intruder", task.ID), apperrors.ErrForbidden)
	require.NoError(t, f.tasks.DeleteTask(ctx, "user_1", task.ID))

	_, err = f.store.Tasks.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrTaskNotFound)
	assert.Equal(t, int64(0), f.completionCount(t, task.ID))

	user, err := f.store.Users.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.Experience)
}

func TestListTasks_AttachesLastCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.createTask(t, "user_1", recurrentRequest("Water plants", 10, 1))
	untouched := f.createTask(t, "user_1", onceRequest("Someday", 10))

	_, err := f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	f.clock.Set(f.clock.Now().Add(48 * time.Hour))
	_, err = f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	_, err = f.tasks.CompleteTask(ctx, "user_1", task.ID)
	require.NoError(t, err)

	tasks, err := f.tasks.ListTasks(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := map[string]model.Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	require.NotNil(t, byID[task.ID].LastCompletedAt)
	assert.True(t, byID[task.ID].LastCompletedAt.Equal(f.clock.Now()))
	assert.Nil(t, byID[untouched.ID].LastCompletedAt)
	assert.Equal(t, int64(2), f.completionCount(t, task.ID))
}

func TestCompletionHistory_GroupsByDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createTask(t, "user_1", onceRequest("First", 10))
	second := f.createTask(t, "user_1", onceRequest("Second", 20))
	third := f.createTask(t, "user_1", onceRequest("Third", 30))

	f.clock.Set(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	_, err := f.tasks.CompleteTask(ctx, "user_1", first.ID)
	require.NoError(t, err)
	f.clock.Set(time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC))
	_, err = f.tasks.CompleteTask(ctx, "user_1", second.ID)
	require.NoError(t, err)
	f.clock.Set(time.Date(2024, 5, 3, 7, 0, 0, 0, time.UTC))
	_, err = f.tasks.CompleteTask(ctx, "user_1", third.ID)
	require.NoError(t, err)

	history, err := f.tasks.CompletionHistory(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "2024-05-01", history[0].Date)
	assert.Equal(t, 2, history[0].Count)
	assert.Equal(t, int64(30), history[0].Experience)
	assert.Equal(t, "First", history[0].Completions[0].Title)

	assert.Equal(t, "2024-05-03", history[1].Date)
	assert.Equal(t, int64(30), history[1].Experience)

	empty, err := f.tasks.CompletionHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
