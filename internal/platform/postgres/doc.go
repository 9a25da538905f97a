// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the transactional UnitOfWork that binds them to one
// transaction, and the embedded goose schema migrations.
package postgres
