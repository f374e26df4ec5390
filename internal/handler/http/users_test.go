// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.users.EXPECT().Users(gomock.Any()).Return([]models.User{{ID: "1", UserName: "a"}, {ID: "2", UserName: "b"}}, nil)

	rec := env.do(t, http.MethodGet, "/api/users", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestListUsers_ByEmail(t *testing.T) {
	env := newTestEnv(t)
	env.users.EXPECT().FindByEmail(gomock.Any(), "AaA@bBb.com").Return(&models.User{ID: "1", Email: "aaa@bbb.com"}, nil)

	rec := env.do(t, http.MethodGet, "/api/users?email=AaA@bBb.com", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "1", users[0].ID)
}

func TestGetUser_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.users.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, fmt.Errorf("user search by id failed: %w", identity.ErrNotFound))

	rec := env.do(t, http.MethodGet, "/api/users/missing", nil, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, identity.ErrNotFound.Error(), decodeError(t, rec).Error)
}

func TestGetUser_RetryableStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	storeErr := fmt.Errorf("%w: %w: %w", identity.ErrPersistenceFailure, store.ErrRetryable, errors.New("deadlock detected"))
	env.users.EXPECT().FindByID(gomock.Any(), "1").Return(nil, storeErr)

	rec := env.do(t, http.MethodGet, "/api/users/1", nil, true)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), decodeError(t, rec).Error)
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice", Email: "alice@example.com", EmailConfirmed: true}
	expectUser(env, user)

	env.users.EXPECT().Update(gomock.Any(), user).DoAndReturn(func(_ any, u *models.User) error {
		assert.Equal(t, "alice2", u.UserName)
		assert.False(t, u.EmailConfirmed)
		return nil
	})

	rec := env.do(t, http.MethodPut, "/api/users/1",
		models.UserUpdateRequest{UserName: "alice2", Email: "new@example.com"}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateUser_Conflict(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice"}
	expectUser(env, user)
	env.users.EXPECT().Update(gomock.Any(), user).Return(identity.ErrDuplicateEmail)

	rec := env.do(t, http.MethodPut, "/api/users/1",
		models.UserUpdateRequest{UserName: "alice", Email: "taken@example.com"}, true)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice"}
	expectUser(env, user)
	env.users.EXPECT().Delete(gomock.Any(), user).Return(nil)

	rec := env.do(t, http.MethodDelete, "/api/users/1", nil, true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClaims(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice"}
	claim := models.Claim{Type: "dept", Value: "ops"}

	expectUser(env, user)
	env.users.EXPECT().AddClaim(gomock.Any(), user, claim).DoAndReturn(func(_ any, u *models.User, c models.Claim) error {
		u.Claims = append(u.Claims, c)
		return nil
	})
	env.users.EXPECT().GetClaims(user).DoAndReturn(func(u *models.User) []models.Claim { return u.Claims }).Times(2)

	rec := env.do(t, http.MethodPost, "/api/users/1/claims", claim, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ops")

	expectUser(env, user)
	env.users.EXPECT().RemoveClaim(gomock.Any(), user, claim).DoAndReturn(func(_ any, u *models.User, _ models.Claim) error {
		u.Claims = []models.Claim{}
		return nil
	})

	rec = env.do(t, http.MethodDelete, "/api/users/1/claims", claim, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAddClaim_Invalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/1/claims", models.Claim{Type: "dept"}, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "value")
}

func TestLogins(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice"}
	login := models.Login{Provider: "github", ProviderKey: "42"}

	expectUser(env, user)
	env.users.EXPECT().AddLogin(gomock.Any(), user, login).Return(identity.ErrLoginAlreadyAssociated)
	rec := env.do(t, http.MethodPost, "/api/users/1/logins", login, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.users.EXPECT().FindByLogin(gomock.Any(), "github", "42").Return(user, nil)
	rec = env.do(t, http.MethodGet, "/api/logins/github/42", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	expectUser(env, user)
	env.users.EXPECT().RemoveLogin(gomock.Any(), user, "github", "42").Return(nil)
	rec = env.do(t, http.MethodDelete, "/api/users/1/logins/github/42", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRoles_Membership(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: "1", UserName: "alice"}

	expectUser(env, user)
	env.users.EXPECT().AddToRole(gomock.Any(), user, "ADM").Return(fmt.Errorf("%w: %q", identity.ErrRoleNotFound, "ADM"))
	rec := env.do(t, http.MethodPut, "/api/users/1/roles/ADM", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, identity.ErrRoleNotFound.Error(), decodeError(t, rec).Error)

	expectUser(env, user)
	env.users.EXPECT().RemoveFromRole(gomock.Any(), user, "ADM").Return(nil)
	rec = env.do(t, http.MethodDelete, "/api/users/1/roles/ADM", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: testUserID, UserName: "alice"}

	expectUser(env, user)
	env.users.EXPECT().ChangePassword(gomock.Any(), user, "old-password", "new-password").Return(nil)
	rec := env.do(t, http.MethodPost, "/api/users/"+testUserID+"/password",
		models.PasswordChangeRequest{CurrentPassword: "old-password", NewPassword: "new-password"}, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	expectUser(env, user)
	env.users.EXPECT().ChangePassword(gomock.Any(), user, "bad-password", "new-password").Return(service.ErrWrongPassword)
	rec = env.do(t, http.MethodPost, "/api/users/"+testUserID+"/password",
		models.PasswordChangeRequest{CurrentPassword: "bad-password", NewPassword: "new-password"}, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword_OtherUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/users/someone-else/password",
		models.PasswordChangeRequest{CurrentPassword: "old-password", NewPassword: "new-password"}, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
