// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/mock"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

const (
	testToken  = "access-token"
	testUserID = "u1"
)

type testEnv struct {
	router *chi.Mux
	users  *mock.MockUserManager
	roles  *mock.MockRoleManager
	auth   *mock.MockAuthService
	info   *mock.MockAppInfoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	env := &testEnv{
		users: mock.NewMockUserManager(ctrl),
		roles: mock.NewMockRoleManager(ctrl),
		auth:  mock.NewMockAuthService(ctrl),
		info:  mock.NewMockAppInfoService(ctrl),
	}

	env.auth.EXPECT().ParseToken(gomock.Any(), testToken).Return(models.Token{UserID: testUserID}, nil).AnyTimes()

	h := NewHandler(&service.Services{
		UserManager:    env.users,
		RoleManager:    env.roles,
		AuthService:    env.auth,
		AppInfoService: env.info,
	}, logger.Nop())
	env.router = h.Init()

	return env
}

// do sends a request through the router. body is JSON encoded unless nil.
// Requests carry the valid test token when authorized is true.
func (e *testEnv) do(t *testing.T, method, target string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) utils.ErrorBody {
	t.Helper()

	var body utils.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func expectUser(e *testEnv, user *models.User) {
	e.users.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
}

