// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

// Mapping describes how a row type T is laid out in a table.
//
// Values and Targets must return one element per entry of Columns, in the
// same order. KeyColumns is a subset of Columns identifying a row.
type Mapping[T any] struct {
	Table      string
	Columns    []string
	KeyColumns []string
	Values     func(*T) []any
	Targets    func(*T) []any
}

// Table is a typed gateway over one table.
type Table[T any] struct {
	db      *DB
	mapping Mapping[T]
	keyIdx  []int
	dataIdx []int
}

// NewTable binds m to db. It panics if a key column is not listed in
// m.Columns.
func NewTable[T any](db *DB, m Mapping[T]) *Table[T] {
	t := &Table[T]{db: db, mapping: m}

	pos := make(map[string]int, len(m.Columns))
	for i, c := range m.Columns {
		pos[c] = i
	}

	isKey := make(map[int]bool, len(m.KeyColumns))
	for _, k := range m.KeyColumns {
		i, ok := pos[k]
		if !ok {
			panic(fmt.Sprintf("store: key column %q is not mapped in table %q", k, m.Table))
		}
		t.keyIdx = append(t.keyIdx, i)
		isKey[i] = true
	}

	for i := range m.Columns {
		if !isKey[i] {
			t.dataIdx = append(t.dataIdx, i)
		}
	}

	return t
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.mapping.Table
}

// Save inserts entity as a new row.
func (t *Table[T]) Save(ctx context.Context, entity *T) error {
	log := logger.FromContext(ctx)

	query, args, err := t.db.builder.
		Insert(t.mapping.Table).
		Columns(t.mapping.Columns...).
		Values(t.mapping.Values(entity)...).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.Save").Str("table", t.mapping.Table).Msg("failed to build insert")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = t.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "Table.Save").Str("table", t.mapping.Table).Msg("failed to insert row")
		return t.db.execError(err)
	}

	return nil
}

// Update overwrites every non-key column of the row keyed by entity.
// Returns [ErrNoRowsAffected] when no such row exists.
func (t *Table[T]) Update(ctx context.Context, entity *T) error {
	log := logger.FromContext(ctx)

	values := t.mapping.Values(entity)
	builder := t.db.builder.Update(t.mapping.Table).Where(t.keyOf(values))
	for _, i := range t.dataIdx {
		builder = builder.Set(t.mapping.Columns[i], values[i])
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.Update").Str("table", t.mapping.Table).Msg("failed to build update")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return t.execAffecting(ctx, "Table.Update", query, args)
}

// Delete removes the row keyed by entity.
// Returns [ErrNoRowsAffected] when no such row exists.
func (t *Table[T]) Delete(ctx context.Context, entity *T) error {
	log := logger.FromContext(ctx)

	query, args, err := t.db.builder.
		Delete(t.mapping.Table).
		Where(t.keyOf(t.mapping.Values(entity))).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.Delete").Str("table", t.mapping.Table).Msg("failed to build delete")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return t.execAffecting(ctx, "Table.Delete", query, args)
}

// DeleteWhere removes every row matching pred and returns how many were
// removed.
func (t *Table[T]) DeleteWhere(ctx context.Context, pred Predicate) (int64, error) {
	log := logger.FromContext(ctx)

	builder := t.db.builder.Delete(t.mapping.Table)
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.DeleteWhere").Str("table", t.mapping.Table).Msg("failed to build delete")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := t.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "Table.DeleteWhere").Str("table", t.mapping.Table).Msg("failed to delete rows")
		return 0, t.db.execError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return n, nil
}

// GetByID loads the row whose key columns equal key, in KeyColumns order.
// Returns [ErrRecordNotFound] when no such row exists.
func (t *Table[T]) GetByID(ctx context.Context, key ...any) (*T, error) {
	log := logger.FromContext(ctx)

	if len(key) != len(t.keyIdx) {
		return nil, fmt.Errorf("%w: table %s expects %d key values, got %d",
			ErrBuildingSQLQuery, t.mapping.Table, len(t.keyIdx), len(key))
	}

	eq := make(sq.Eq, len(key))
	for i, k := range t.mapping.KeyColumns {
		eq[k] = key[i]
	}

	query, args, err := t.db.builder.
		Select(t.mapping.Columns...).
		From(t.mapping.Table).
		Where(eq).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.GetByID").Str("table", t.mapping.Table).Msg("failed to build select")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	entity := new(T)
	err = t.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(t.mapping.Targets(entity)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "Table.GetByID").Str("table", t.mapping.Table).Msg("failed to scan row")
		return nil, t.db.driverError(ErrScanningRow, err)
	}

	return entity, nil
}

// Query returns every row matching pred, ordered by orderBy when given.
func (t *Table[T]) Query(ctx context.Context, pred Predicate, orderBy ...string) ([]T, error) {
	log := logger.FromContext(ctx)

	builder := t.db.builder.Select(t.mapping.Columns...).From(t.mapping.Table)
	if pred != nil {
		builder = builder.Where(pred)
	}
	if len(orderBy) > 0 {
		builder = builder.OrderBy(orderBy...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.Query").Str("table", t.mapping.Table).Msg("failed to build select")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := t.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "Table.Query").Str("table", t.mapping.Table).Msg("failed to execute select")
		return nil, t.db.driverError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var entity T
		if scanErr := rows.Scan(t.mapping.Targets(&entity)...); scanErr != nil {
			log.Err(scanErr).Str("func", "Table.Query").Str("table", t.mapping.Table).Msg("failed to scan row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		result = append(result, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "Table.Query").Str("table", t.mapping.Table).Msg("error iterating rows")
		return nil, t.db.driverError(ErrScanningRows, rowsErr)
	}

	return result, nil
}

// Count returns the number of rows matching pred.
func (t *Table[T]) Count(ctx context.Context, pred Predicate) (int, error) {
	log := logger.FromContext(ctx)

	builder := t.db.builder.Select("COUNT(*)").From(t.mapping.Table)
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "Table.Count").Str("table", t.mapping.Table).Msg("failed to build count")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var n int
	if err = t.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Err(err).Str("func", "Table.Count").Str("table", t.mapping.Table).Msg("failed to scan count")
		return 0, t.db.driverError(ErrScanningRow, err)
	}

	return n, nil
}

func (t *Table[T]) keyOf(values []any) sq.Eq {
	eq := make(sq.Eq, len(t.keyIdx))
	for _, i := range t.keyIdx {
		eq[t.mapping.Columns[i]] = values[i]
	}

	return eq
}

func (t *Table[T]) execAffecting(ctx context.Context, fn, query string, args []any) error {
	log := logger.FromContext(ctx)

	res, err := t.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("table", t.mapping.Table).Msg("failed to execute statement")
		return t.db.execError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
