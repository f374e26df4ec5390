// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
	"github.com/MKhiriev/go-identity-keeper/models"
)

var (
	testApp = config.App{
		TokenSignKey:         "test-sign-key",
		TokenIssuer:          "identity-test",
		TokenDuration:        time.Hour,
		PurposeTokenDuration: time.Hour,
	}
	testLockout = config.Lockout{
		EnabledByDefault:        true,
		MaxFailedAccessAttempts: 3,
		Duration:                5 * time.Minute,
	}
)

type testEnv struct {
	stores *identity.Stores
	users  *userManager
	roles  RoleManager
	auth   AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, config.DB{Driver: config.DriverSQLite, DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	stores := identity.NewStores(db, logger.Nop())
	hasher := crypto.NewPasswordHasherWithParams(crypto.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	validator := validators.NewStructValidator()

	users := NewUserManager(stores.Users, hasher, validator, testApp, testLockout, logger.Nop()).(*userManager)

	return &testEnv{
		stores: stores,
		users:  users,
		roles:  NewRoleManager(stores.Roles, validator, logger.Nop()),
		auth:   NewAuthService(users, testApp, logger.Nop()),
	}
}

func (e *testEnv) createUser(t *testing.T, userName, password string) *models.User {
	t.Helper()

	u := &models.User{UserName: userName, Email: userName + "@example.com"}
	require.NoError(t, e.users.Create(context.Background(), u, password))
	return u
}
