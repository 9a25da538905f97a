package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/coursegen-api/internal/store"
)

// UnitOfWork implements store.UnitOfWork over a connection pool.
type UnitOfWork struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a UnitOfWork on db.
func NewUnitOfWork(db *sql.DB, logger *slog.Logger) *UnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{db: db, logger: logger}
}

// NewStores binds every pipeline store to db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Courses:   NewPostgresCourseStore(db, logger),
		Jobs:      NewPostgresJobStore(db, logger),
		Artifacts: NewPostgresArtifactStore(db, logger),
		Activity:  NewPostgresActivityLogStore(db, logger),
	}
}

// Stores implements store.UnitOfWork.
func (u *UnitOfWork) Stores() store.Stores {
	return NewStores(u.db, u.logger)
}

// InTx implements store.UnitOfWork.
func (u *UnitOfWork) InTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	return store.RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, NewStores(tx, u.logger))
	})
}
