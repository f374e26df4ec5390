// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func newMockStores(t *testing.T) (UserStore, RoleStore, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db := store.NewDB(conn, config.DriverPostgres, logger.Nop())
	return NewUserStore(db, logger.Nop()), NewRoleStore(db, logger.Nop()), mock
}

func TestPersistenceFailure_BeginFails(t *testing.T) {
	users, _, mock := newMockStores(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := users.FindByID(context.Background(), "u1")

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrBeginningTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceFailure_QueryFailsRollsBack(t *testing.T) {
	users, _, mock := newMockStores(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM users`).WillReturnError(errors.New("broken pipe"))
	mock.ExpectRollback()

	_, err := users.FindByName(context.Background(), "lukz")

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrExecutingQuery)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceFailure_CommitFails(t *testing.T) {
	_, roles, mock := newMockStores(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM roles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO roles`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	role := &models.Role{Name: "ADM"}
	err := roles.CreateRole(context.Background(), role)

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrCommitingTransaction)
	assert.Empty(t, role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceFailure_ConcurrentUniqueViolation(t *testing.T) {
	users, _, mock := newMockStores(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	u := &models.User{UserName: "lukz"}
	err := users.CreateUser(context.Background(), u)

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.ErrorIs(t, err, store.ErrUniqueViolation)
	assert.Empty(t, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceFailure_ChildWriteFailsRollsBack(t *testing.T) {
	users, _, mock := newMockStores(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM user_claims`).WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	u := &models.User{ID: "u1", UserName: "lukz"}
	err := users.DeleteUser(context.Background(), u)

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrExecutingStatement)
	assert.NotErrorIs(t, err, store.ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceFailure_DeadlockIsRetryable(t *testing.T) {
	users, _, mock := newMockStores(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM user_claims`).WillReturnError(&pgconn.PgError{Code: "40P01"})
	mock.ExpectRollback()

	err := users.DeleteUser(context.Background(), &models.User{ID: "u1", UserName: "lukz"})

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistenceError(t *testing.T) {
	assert.NoError(t, persistenceError(nil))
	assert.Equal(t, ErrNotFound, persistenceError(ErrNotFound))

	err := persistenceError(store.ErrScanningRow)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, store.ErrScanningRow)
}
