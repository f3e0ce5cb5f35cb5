// Package lifecycle holds the task and project status rules.
//
// Task states: ACTIVE -> DONE on completion; RECURRENT tasks go DONE -> ACTIVE
// when the sweep finds their cooldown elapsed, and ACTIVE|DONE -> INACTIVE when
// closed. INACTIVE -> ACTIVE on reopen. Nothing here touches storage.
package lifecycle

import (
	"fmt"
	"time"

	"nextlevel.com/nextlevel/internal/constants"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	model "nextlevel.com/nextlevel/internal/models"
)

func CheckCompletable(task *model.Task) error {
	if task.Status == constants.StatusDone {
		return apperrors.ErrTaskAlreadyCompleted
	}
	return nil
}

func CheckClosable(task *model.Task) error {
	if !task.IsRecurrent() {
		return apperrors.ErrInvalidTaskType
	}
	return nil
}

func CheckReopenable(task *model.Task) error {
	if task.Status != constants.StatusInactive {
		return apperrors.ErrTaskNotInactive
	}
	return nil
}

// ProjectBlockers lists owned tasks that are not finished: ONCE tasks must be
// DONE and RECURRENT tasks must be INACTIVE.
func ProjectBlockers(tasks []model.Task) []model.Task {
	var blockers []model.Task
	for _, task := range tasks {
		finished := constants.StatusDone
		if task.IsRecurrent() {
			finished = constants.StatusInactive
		}
		if task.Status != finished {
			blockers = append(blockers, task)
		}
	}
	return blockers
}

// CheckProjectCompletable returns ErrProjectAlreadyCompleted or an
// *IncompleteSubtasks carrying every blocking task.
func CheckProjectCompletable(project *model.Project, tasks []model.Task) error {
	if project.Status == constants.StatusDone {
		return apperrors.ErrProjectAlreadyCompleted
	}

	blockers := ProjectBlockers(tasks)
	if len(blockers) == 0 {
		return nil
	}

	out := make([]apperrors.Blocker, 0, len(blockers))
	for _, task := range blockers {
		out = append(out, apperrors.Blocker{
			ID:     task.ID,
			Title:  task.Title,
			Type:   string(task.Type),
			Status: string(task.Status),
		})
	}
	return &apperrors.IncompleteSubtasks{Blockers: out}
}

// DaysBetween counts calendar days from `from` to `to` in loc. Both instants
// are reduced to their date first, so sub-day timing never matters.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()

	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)

	return int(end.Sub(start).Hours() / 24)
}

// DueForReset reports whether a DONE recurrent task last completed at
// lastCompletion should become ACTIVE at now. A nil lastCompletion is never due.
func DueForReset(task *model.Task, lastCompletion *time.Time, now time.Time, loc *time.Location) (bool, error) {
	if !task.IsRecurrent() || task.Status != constants.StatusDone {
		return false, nil
	}
	if task.RecurrenceIntervalDays == nil || *task.RecurrenceIntervalDays <= 0 {
		return false, fmt.Errorf("task %s: invalid recurrence interval", task.ID)
	}
	if lastCompletion == nil {
		return false, nil
	}

	return DaysBetween(*lastCompletion, now, loc) >= *task.RecurrenceIntervalDays, nil
}
