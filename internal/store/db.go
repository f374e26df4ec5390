// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/migrations"
)

// DB is the object store handle. It owns the connection pool, builds
// statements in the dialect of the underlying driver and classifies driver
// errors.
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Open connects to the database selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// NewDB wraps an already opened connection pool. driver is one of
// [config.DriverPostgres] or [config.DriverSQLite].
func NewDB(conn *sql.DB, driver string, log *logger.Logger) *DB {
	db := &DB{
		DB:     conn,
		driver: driver,
		logger: log,
	}

	switch driver {
	case config.DriverSQLite:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		db.errorClassificator = NewSQLiteErrorClassifier()
	default:
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.errorClassificator = NewPostgresErrorClassifier()
	}

	return db
}

// Driver reports the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	dialect := migrations.DialectPostgres
	if db.driver == config.DriverSQLite {
		dialect = migrations.DialectSQLite
	}

	if err := migrations.Migrate(ctx, db.DB, dialect); err != nil {
		db.logger.Err(err).Str("func", "DB.Migrate").Msg("error applying migrations")
		return err
	}

	db.logger.Info().Str("func", "DB.Migrate").Msg("migrations applied")
	return nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		db.logger.Err(err).Str("func", "DB.Close").Msg("error closing database")
		return err
	}

	db.logger.Info().Str("func", "DB.Close").Msg("database closed")
	return nil
}

// Classify exposes the driver specific error classification.
func (db *DB) Classify(err error) ErrorClassification {
	return db.errorClassificator.Classify(err)
}

// driverError wraps a driver failure in op. Failures the classifier marks
// as transient also match [ErrRetryable].
func (db *DB) driverError(op error, err error) error {
	if db.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", op, ErrRetryable, err)
	}

	return fmt.Errorf("%w: %w", op, err)
}

// execError maps a failed write to [ErrUniqueViolation] or [ErrExecutingStatement].
func (db *DB) execError(err error) error {
	if db.errorClassificator.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}

	return db.driverError(ErrExecutingStatement, err)
}
