package repository

import (
	"context"

	"gorm.io/gorm"
)

// maxBatchParams keeps IN lists under sqlite's bound-variable limit.
const maxBatchParams = 500

// Store bundles the repositories over one connection or transaction.
type Store struct {
	db          *gorm.DB
	Users       *UserRepository
	Tasks       *TaskRepository
	Projects    *ProjectRepository
	Completions *CompletionRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Tasks:       NewTaskRepository(db),
		Projects:    NewProjectRepository(db),
		Completions: NewCompletionRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. Any
// error from fn rolls everything back. Nested calls are not supported.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
