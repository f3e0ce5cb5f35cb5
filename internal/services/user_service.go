package services

import (
	"context"
	"log/slog"

	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
	"nextlevel.com/nextlevel/internal/leveling"
	model "nextlevel.com/nextlevel/internal/models"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

type UserService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewUserService(store *repository.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// RegisterUser creates a level-1 user. Registering an existing user returns
// it unchanged.
func (s *UserService) RegisterUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperrors.Validation("id", "is required")
	}

	user, created, err := s.store.Users.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.InfoContext(ctx, "user registered", slog.String("user_id", userID))
	}
	return user, nil
}

// DeleteUser removes the user and everything they own. Deleting an unknown
// user succeeds.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.Validation("id", "is required")
	}

	var deleted bool
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Completions.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Tasks.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Projects.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		var err error
		deleted, err = tx.Users.Delete(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", userID))
	}
	return nil
}

func (s *UserService) Progress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressResponse{
		UserID:     user.ClerkID,
		Experience: user.Experience,
		Level:      user.Level,
		Progress:   leveling.LevelFromXP(user.Experience),
	}, nil
}
