package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/walaka/walaka/internal/config"
	"github.com/walaka/walaka/internal/logger"
)

// DB wraps sqlx.DB to provide transaction management
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// Querier is the subset of sqlx used by the repositories.
// Both *sqlx.DB and *sqlx.Tx implement it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// NewDB opens the connection pool described by config
func NewDB(config *config.Configuration, logger *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", config.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	if config.Postgres.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.Postgres.MaxOpenConns)
	}
	if config.Postgres.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}
	if config.Postgres.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(config.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return New(db, logger), nil
}

// New wraps an existing connection, used by tests with sqlmock
func New(db *sqlx.DB, logger *logger.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
		return err
	}
	return nil
}

// GetQuerier returns either the transaction from context or the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return NewTracedQuerier(tx.Tx, db.logger, tx.ID)
	}
	return NewTracedQuerier(db.DB, db.logger, "")
}
