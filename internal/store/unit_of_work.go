package store

import "context"

// Stores bundles the pipeline stores bound to one connection or transaction.
type Stores struct {
	Courses   CourseStore
	Jobs      JobStore
	Artifacts ArtifactStore
	Activity  ActivityLogStore
}

// UnitOfWork hands out store sets and runs groups of writes atomically.
type UnitOfWork interface {
	// Stores returns stores that write outside any transaction.
	Stores() Stores

	// InTx runs fn with stores bound to a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
