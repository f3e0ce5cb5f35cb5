package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "nextlevel.com/nextlevel/internal/errors"
	model "nextlevel.com/nextlevel/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, clerkID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "clerk_id = ?", clerkID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Create inserts a fresh level-1 user. It reports false if the user already
// existed, leaving the existing row untouched.
func (r *UserRepository) Create(ctx context.Context, clerkID string) (*model.User, bool, error) {
	user := &model.User{ClerkID: clerkID, Experience: 0, Level: 1, Version: 1}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByID(ctx, clerkID)
		return existing, false, err
	}
	return user, true, nil
}

// UpdateProgress writes experience and level together, guarded by the row
// version read with the user.
func (r *UserRepository) UpdateProgress(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("clerk_id = ? AND version = ?", user.ClerkID, user.Version).
		Updates(map[string]interface{}{
			"experience": user.Experience,
			"level":      user.Level,
			"version":    gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return fmt.Errorf("update user progress: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}

	user.Version++
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, clerkID string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.User{}, "clerk_id = ?", clerkID)
	if res.Error != nil {
		return false, fmt.Errorf("delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
