// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

type txCtxKey struct{}

// Tx is an explicitly scoped transaction returned by [DB.Begin].
type Tx struct {
	db   *DB
	tx   *sql.Tx
	done bool
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTransactionDone
	}
	t.done = true

	if err := t.tx.Commit(); err != nil {
		return t.db.driverError(ErrCommitingTransaction, err)
	}

	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a
// no-op, so Rollback is safe to defer.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	return t.tx.Rollback()
}

// Begin starts a transaction and returns a context that carries it. Every
// table operation called with the returned context runs inside the
// transaction until it is committed or rolled back.
func (db *DB) Begin(ctx context.Context) (context.Context, *Tx, error) {
	log := logger.FromContext(ctx)

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "DB.Begin").Msg("failed to begin transaction")
		return ctx, nil, db.driverError(ErrBeginningTransaction, err)
	}

	tx := &Tx{db: db, tx: sqlTx}
	return context.WithValue(ctx, txCtxKey{}, tx), tx, nil
}

// WithinTransaction runs fn inside a transaction. If ctx already carries a
// transaction, fn joins it and the outer scope decides the outcome.
// Otherwise a new transaction is started, committed when fn returns nil and
// rolled back on error or panic. Panics are rethrown.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	log := logger.FromContext(ctx)

	txCtx, tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Err(rbErr).Str("func", "DB.WithinTransaction").Msg("failed to rollback transaction")
			}
			return
		}
		if err = tx.Commit(); err != nil {
			log.Err(err).Str("func", "DB.WithinTransaction").Msg("failed to commit transaction")
		}
	}()

	err = fn(txCtx)
	return err
}

// conn returns the transaction carried by ctx or the pool.
func (db *DB) conn(ctx context.Context) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx.tx
	}

	return db.DB
}

func txFromContext(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*Tx)
	if !ok || tx.done {
		return nil, false
	}

	return tx, true
}
