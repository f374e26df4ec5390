// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by table operations to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned by [Table.GetByID] when no row has the
	// requested key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoRowsAffected is returned by [Table.Update] and [Table.Delete] when
	// the keyed row does not exist.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrUniqueViolation is returned when a write violates a unique index or
	// primary key.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrUnsupportedDriver is returned by [Open] for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrTransactionDone is returned when committing or rolling back a [Tx]
	// that has already been finished.
	ErrTransactionDone = errors.New("transaction already finished")

	// ErrRetryable is wrapped alongside the operation error when the driver
	// reports a transient failure (serialization failure, deadlock, lost
	// connection, busy database). Repeating the whole unit of work may
	// succeed.
	ErrRetryable = errors.New("transient database failure")
)

// Low-level database operation errors. These are returned (or wrapped) by
// table methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
