// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type testEnv struct {
	db    *store.DB
	users UserStore
	roles RoleStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, config.DB{Driver: config.DriverSQLite, DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	return &testEnv{
		db:    db,
		users: NewUserStore(db, logger.Nop()),
		roles: NewRoleStore(db, logger.Nop()),
	}
}

func (e *testEnv) createUser(t *testing.T, userName, email string) *models.User {
	t.Helper()

	u := &models.User{UserName: userName, Email: email}
	require.NoError(t, e.users.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) createRole(t *testing.T, name string) *models.Role {
	t.Helper()

	r := &models.Role{Name: name}
	require.NoError(t, e.roles.CreateRole(context.Background(), r))
	return r
}
