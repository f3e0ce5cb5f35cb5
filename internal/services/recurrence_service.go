package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/lifecycle"
	"nextlevel.com/nextlevel/internal/locks"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

// sweepLockTTL bounds how long a crashed sweep can block the next one.
const sweepLockTTL = 5 * time.Minute

type SweepResult struct {
	Updated    int64 `json:"updated"`
	Candidates int   `json:"candidates"`
}

// RecurrenceService reactivates DONE recurrent tasks whose cooldown has
// elapsed.
type RecurrenceService struct {
	store  *repository.Store
	locker locks.Locker
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

func NewRecurrenceService(
	store *repository.Store,
	locker locks.Locker,
	logger *slog.Logger,
	now func() time.Time,
	loc *time.Location,
) *RecurrenceService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecurrenceService{
		store:  store,
		locker: locker,
		logger: logger,
		now:    now,
		loc:    loc,
	}
}

// Sweep evaluates every RECURRENT task in DONE and flips the due ones back to
// ACTIVE with one set-based update. Tasks that cannot be evaluated are logged
// and skipped. Only one sweep runs at a time.
func (s *RecurrenceService) Sweep(ctx context.Context) (SweepResult, error) {
	lock, err := s.locker.TryLock(ctx, locks.SweepKey, sweepLockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			return SweepResult{}, apperrors.ErrSweepInProgress
		}
		return SweepResult{}, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release sweep lock", slog.Any("error", err))
		}
	}()

	started := time.Now()
	now := s.now()

	candidates, err := s.store.Tasks.ListRecurrentDone(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	result := SweepResult{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return result, nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	latest, err := s.store.Completions.LatestForTasks(ctx, ids)
	if err != nil {
		return SweepResult{}, err
	}

	var due []string
	for i := range candidates {
		task := &candidates[i]

		var last *time.Time
		if at, ok := latest[task.ID]; ok {
			last = &at
		}

		ready, err := lifecycle.DueForReset(task, last, now, s.loc)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping recurrent task", slog.String("task_id", task.ID), slog.Any("error", err))
			continue
		}
		if ready {
			due = append(due, task.ID)
		}
	}

	if len(due) > 0 {
		err = s.store.Transaction(ctx, func(tx *repository.Store) error {
			result.Updated, err = tx.Tasks.ActivateRecurrent(ctx, due)
			return err
		})
		if err != nil {
			return SweepResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "recurrence sweep finished",
		slog.Int64("updated", result.Updated),
		slog.Int("candidates", result.Candidates),
		slog.Duration("took", time.Since(started)),
	)
	return result, nil
}
