// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type Services struct {
	UserManager    UserManager
	RoleManager    RoleManager
	AuthService    AuthService
	AppInfoService AppInfoService
}

func NewServices(stores *identity.Stores, cfg config.StructuredConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) *Services {
	validator := validators.NewStructValidator()
	userManager := NewUserManager(stores.Users, crypto.NewPasswordHasher(), validator, cfg.App, cfg.Lockout, logger)

	return &Services{
		UserManager:    userManager,
		RoleManager:    NewRoleManager(stores.Roles, validator, logger),
		AuthService:    NewAuthService(userManager, cfg.App, logger),
		AppInfoService: NewAppInfoService(buildInfo, logger),
	}
}
