package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/events"
	"nextlevel.com/nextlevel/internal/leveling"
	"nextlevel.com/nextlevel/internal/locks"
	model "nextlevel.com/nextlevel/internal/models"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

const (
	maxRewardAttempts = 3
	publishTimeout    = 5 * time.Second
)

// RewardService serializes XP-granting work per user and emits the
// resulting events once the work has committed.
type RewardService struct {
	locker    locks.Locker
	publisher events.Publisher
	logger    *slog.Logger
	lockTTL   time.Duration
	lockWait  time.Duration
}

func NewRewardService(
	locker locks.Locker,
	publisher events.Publisher,
	logger *slog.Logger,
	lockTTL time.Duration,
	lockWait time.Duration,
) *RewardService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &RewardService{
		locker:    locker,
		publisher: publisher,
		logger:    logger,
		lockTTL:   lockTTL,
		lockWait:  lockWait,
	}
}

// Serialize runs fn while holding the user's lock. fn is retried when it
// loses an optimistic-lock race, so it must be a whole transaction.
func (s *RewardService) Serialize(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	lock, err := locks.Acquire(ctx, s.locker, locks.UserKey(userID), s.lockTTL, s.lockWait)
	if err != nil {
		if errors.Is(err, locks.ErrNotAcquired) {
			return apperrors.ErrBusy
		}
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release user lock", slog.String("user_id", userID), slog.Any("error", err))
		}
	}()

	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if !errors.Is(err, apperrors.ErrOptimisticLock) || attempt == maxRewardAttempts {
			return err
		}
		s.logger.WarnContext(ctx, "optimistic lock conflict, retrying",
			slog.String("user_id", userID), slog.Int("attempt", attempt))
	}
}

// Grant adds xp to the user inside tx, keeping level in step with
// experience. A user without a row yet starts from zero.
func (s *RewardService) Grant(ctx context.Context, tx *repository.Store, userID string, xp int64) (*model.User, leveling.Gain, error) {
	user, _, err := tx.Users.Create(ctx, userID)
	if err != nil {
		return nil, leveling.Gain{}, err
	}

	gain := leveling.ApplyXPGain(user.Experience, xp)
	user.Experience = gain.NewTotalXP
	user.Level = gain.NewLevel

	if err := tx.Users.UpdateProgress(ctx, user); err != nil {
		return nil, leveling.Gain{}, err
	}
	return user, gain, nil
}

// Publish hands committed events to the broker. Failures are logged only.
func (s *RewardService) Publish(ctx context.Context, batch ...events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, batch...); err != nil {
		s.logger.ErrorContext(ctx, "publish events", slog.Int("count", len(batch)), slog.Any("error", err))
	}
}

func levelUpEvent(user *model.User, gain leveling.Gain, at time.Time) events.Event {
	return events.Event{
		Type:       events.TypeUserLeveledUp,
		UserID:     user.ClerkID,
		TotalXP:    gain.NewTotalXP,
		OldLevel:   gain.OldLevel,
		NewLevel:   gain.NewLevel,
		OccurredAt: at,
	}
}
