package lifecycle

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextlevel.com/nextlevel/internal/constants"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	model "nextlevel.com/nextlevel/internal/models"
)

func intPtr(v int) *int { return &v }

func recurrent(id string, status constants.TaskStatus, interval int) model.Task {
	return model.Task{
		ID:                     id,
		Title:                  "recurrent " + id,
		Type:                   constants.TypeRecurrent,
		Status:                 status,
		RecurrenceIntervalDays: intPtr(interval),
	}
}

func once(id string, status constants.TaskStatus) model.Task {
	return model.Task{ID: id, Title: "once " + id, Type: constants.TypeOnce, Status: status}
}

func TestCheckCompletable(t *testing.T) {
	active := once("a", constants.StatusActive)
	inactive := recurrent("b", constants.StatusInactive, 3)
	done := once("c", constants.StatusDone)

	assert.NoError(t, CheckCompletable(&active))
	assert.NoError(t, CheckCompletable(&inactive))
	assert.ErrorIs(t, CheckCompletable(&done), apperrors.ErrTaskAlreadyCompleted)
}

func TestCheckClosable(t *testing.T) {
	r := recurrent("r", constants.StatusDone, 1)
	o := once("o", constants.StatusActive)

	assert.NoError(t, CheckClosable(&r))

	err := CheckClosable(&o)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTaskType)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestCheckReopenable(t *testing.T) {
	closed := recurrent("r", constants.StatusInactive, 1)
	open := recurrent("s", constants.StatusActive, 1)

	assert.NoError(t, CheckReopenable(&closed))
	assert.ErrorIs(t, CheckReopenable(&open), apperrors.ErrTaskNotInactive)
}

func TestCheckProjectCompletable_ListsActiveOnceTask(t *testing.T) {
	project := &model.Project{ID: "p", Status: constants.StatusActive}
	tasks := []model.Task{
		once("done", constants.StatusDone),
		once("open", constants.StatusActive),
	}

	err := CheckProjectCompletable(project, tasks)

	var subtasks *apperrors.IncompleteSubtasks
	require.True(t, errors.As(err, &subtasks))
	require.Len(t, subtasks.Blockers, 1)
	assert.Equal(t, "open", subtasks.Blockers[0].ID)
	assert.Equal(t, "ACTIVE", subtasks.Blockers[0].Status)
}

func TestCheckProjectCompletable_RecurrentMustBeInactive(t *testing.T) {
	project := &model.Project{ID: "p", Status: constants.StatusActive}
	tasks := []model.Task{
		recurrent("closed", constants.StatusInactive, 7),
		recurrent("done", constants.StatusDone, 7),
		recurrent("active", constants.StatusActive, 7),
	}

	var subtasks *apperrors.IncompleteSubtasks
	require.True(t, errors.As(CheckProjectCompletable(project, tasks), &subtasks))

	ids := []string{subtasks.Blockers[0].ID, subtasks.Blockers[1].ID}
	assert.ElementsMatch(t, []string{"done", "active"}, ids)
}

func TestCheckProjectCompletable(t *testing.T) {
	project := &model.Project{ID: "p", Status: constants.StatusActive}
	tasks := []model.Task{
		once("a", constants.StatusDone),
		recurrent("b", constants.StatusInactive, 2),
	}
	assert.NoError(t, CheckProjectCompletable(project, tasks))
	assert.NoError(t, CheckProjectCompletable(project, nil))

	project.Status = constants.StatusDone
	assert.ErrorIs(t, CheckProjectCompletable(project, tasks), apperrors.ErrProjectAlreadyCompleted)
}

func TestDaysBetween(t *testing.T) {
	utc := time.UTC
	now := time.Date(2025, 3, 10, 0, 30, 0, 0, utc)

	assert.Equal(t, 0, DaysBetween(time.Date(2025, 3, 10, 0, 0, 1, 0, utc), now, utc))
	assert.Equal(t, 1, DaysBetween(time.Date(2025, 3, 9, 23, 59, 0, 0, utc), now, utc))
	assert.Equal(t, 7, DaysBetween(time.Date(2025, 3, 3, 18, 0, 0, 0, utc), now, utc))
}

func TestDaysBetween_UsesLocationDates(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:00 UTC on the 10th is still the 9th in New York.
	from := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(from, to, time.UTC))
	assert.Equal(t, 1, DaysBetween(from, to, loc))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	from := time.Date(2025, 3, 29, 12, 0, 0, 0, loc)
	to := time.Date(2025, 3, 31, 0, 10, 0, 0, loc)

	assert.Equal(t, 2, DaysBetween(from, to, loc))
}

func TestDueForReset(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	sevenDaysAgo := time.Date(2025, 6, 8, 21, 0, 0, 0, time.UTC)
	sixDaysAgo := time.Date(2025, 6, 9, 1, 0, 0, 0, time.UTC)

	task := recurrent("weekly", constants.StatusDone, 7)

	due, err := DueForReset(&task, &sevenDaysAgo, now, time.UTC)
	require.NoError(t, err)
	assert.True(t, due)

	due, err = DueForReset(&task, &sixDaysAgo, now, time.UTC)
	require.NoError(t, err)
	assert.False(t, due)

	due, err = DueForReset(&task, nil, now, time.UTC)
	require.NoError(t, err)
	assert.False(t, due)
}

func TestDueForReset_IgnoresOtherStates(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -30)

	active := recurrent("a", constants.StatusActive, 1)
	due, err := DueForReset(&active, &last, now, time.UTC)
	require.NoError(t, err)
	assert.False(t, due)

	o := once("o", constants.StatusDone)
	due, err = DueForReset(&o, &last, now, time.UTC)
	require.NoError(t, err)
	assert.False(t, due)
}

func TestDueForReset_MalformedInterval(t *testing.T) {
	now := time.Now()
	last := now.AddDate(0, 0, -30)

	missing := recurrent("m", constants.StatusDone, 1)
	missing.RecurrenceIntervalDays = nil
	_, err := DueForReset(&missing, &last, now, time.UTC)
	assert.Error(t, err)

	zero := recurrent("z", constants.StatusDone, 0)
	_, err = DueForReset(&zero, &last, now, time.UTC)
	assert.Error(t, err)
}
