// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestGetBuildInfo(t *testing.T) {
	env := newTestEnv(t)
	env.info.EXPECT().GetBuildInfo(gomock.Any()).Return(models.NewAppBuildInfo("1.0.0", "", "abc"))

	rec := env.do(t, http.MethodGet, "/api/version", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"1.0.0","date":"N/A","commit":"abc"}`, rec.Body.String())
}
