// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestAppInfoService_GetBuildInfo(t *testing.T) {
	info := models.NewAppBuildInfo("1.2.3", "2026-01-01", "abc123")

	svc := NewAppInfoService(info, logger.Nop())

	got := svc.GetBuildInfo(context.Background())
	assert.Equal(t, "1.2.3", got.BuildVersion())
	assert.Equal(t, "abc123", got.BuildCommit())
}

func TestAppInfoService_MissingValues(t *testing.T) {
	svc := NewAppInfoService(models.NewAppBuildInfo("", "", ""), logger.Nop())

	resp := svc.GetBuildInfo(context.Background()).Response()

	assert.Equal(t, models.BuildInfoResponse{Version: "N/A", Date: "N/A", Commit: "N/A"}, resp)
}
