// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/metrics"
	"github.com/MKhiriev/go-identity-keeper/internal/mock"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := &models.User{UserName: "alice", Email: "alice@example.com"}
	require.NoError(t, env.auth.Register(ctx, u, "password-1"))
	assert.NotEmpty(t, u.ID)

	err := env.auth.Register(ctx, &models.User{UserName: "bob"}, "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	err = env.auth.Register(ctx, &models.User{UserName: "ALICE"}, "password-2")
	assert.ErrorIs(t, err, identity.ErrDuplicateUsername)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createUser(t, "alice", "password-1")

	successBefore := testutil.ToFloat64(metrics.SignInsTotal.WithLabelValues(metrics.SignInSuccess))

	user, err := env.auth.Login(ctx, "Alice", "password-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.SignInsTotal.WithLabelValues(metrics.SignInSuccess)))
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), "nobody", "password-1")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), "", "password-1")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, err = env.auth.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAuthService_Login_LocksOutAfterMaxFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice", "password-1")
	lockoutsBefore := testutil.ToFloat64(metrics.LockoutsTotal)

	for i := 1; i < testLockout.MaxFailedAccessAttempts; i++ {
		_, err := env.auth.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)

		stored, err := env.users.FindByName(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, i, stored.AccessFailedCount)
	}

	_, err := env.auth.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrLockedOut)
	assert.Equal(t, lockoutsBefore+1, testutil.ToFloat64(metrics.LockoutsTotal))

	// the right password is refused while the lockout lasts
	_, err = env.auth.Login(ctx, "alice", "password-1")
	assert.ErrorIs(t, err, ErrLockedOut)

	stored, err := env.users.FindByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AccessFailedCount)
	assert.NotNil(t, stored.LockoutEnd)
}

func TestAuthService_Login_SuccessResetsFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "alice", "password-1")

	_, err := env.auth.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrWrongPassword)

	user, err := env.auth.Login(ctx, "alice", "password-1")
	require.NoError(t, err)
	assert.Equal(t, 0, user.AccessFailedCount)

	stored, err := env.users.FindByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AccessFailedCount)
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserManager(ctrl)
	auth := NewAuthService(users, testApp, logger.Nop())

	storeErr := errors.New("connection reset")
	users.EXPECT().FindByName(gomock.Any(), "alice").Return(nil, storeErr)

	_, err := auth.Login(context.Background(), "alice", "password-1")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_Login_AccessFailedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserManager(ctrl)
	auth := NewAuthService(users, testApp, logger.Nop())

	user := &models.User{ID: "u1", UserName: "alice", LockoutEnabled: true}
	storeErr := errors.New("disk full")

	gomock.InOrder(
		users.EXPECT().FindByName(gomock.Any(), "alice").Return(user, nil),
		users.EXPECT().IsLockedOut(user).Return(false),
		users.EXPECT().CheckPassword(gomock.Any(), user, "wrong").Return(false, nil),
		users.EXPECT().AccessFailed(gomock.Any(), user).Return(storeErr),
	)

	_, err := auth.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, storeErr)
}

func TestAuthService_Tokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t, "alice", "password-1")

	token, err := env.auth.CreateToken(ctx, u)
	require.NoError(t, err)

	parsed, err := env.auth.ParseToken(ctx, token.String())
	require.NoError(t, err)
	assert.Equal(t, u.ID, parsed.UserID)
	assert.Equal(t, models.PurposeAccess, parsed.Purpose)

	_, err = env.auth.ParseToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	reset, err := env.users.GeneratePasswordResetToken(ctx, u)
	require.NoError(t, err)
	_, err = env.auth.ParseToken(ctx, reset.String())
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.auth.CreateToken(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}
