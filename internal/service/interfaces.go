// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/models"
)

// UserManager is the application facade over the user store. It adds
// validation, password hashing, lockout policy and purpose tokens.
type UserManager interface {
	Create(ctx context.Context, user *models.User, password string) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByName(ctx context.Context, userName string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)

	CheckPassword(ctx context.Context, user *models.User, password string) (bool, error)
	ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error

	AccessFailed(ctx context.Context, user *models.User) error
	GetAccessFailedCount(user *models.User) int
	IsLockedOut(user *models.User) bool
	ResetAccessFailedCount(ctx context.Context, user *models.User) error

	AddClaim(ctx context.Context, user *models.User, claim models.Claim) error
	RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error
	GetClaims(user *models.User) []models.Claim

	AddLogin(ctx context.Context, user *models.User, login models.Login) error
	RemoveLogin(ctx context.Context, user *models.User, provider, providerKey string) error

	AddToRole(ctx context.Context, user *models.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *models.User, roleName string) error
	IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error)
	GetRoles(ctx context.Context, user *models.User) ([]string, error)

	IsEmailConfirmed(user *models.User) bool
	GenerateEmailConfirmationToken(ctx context.Context, user *models.User) (models.Token, error)
	ConfirmEmail(ctx context.Context, user *models.User, token string) error
	GeneratePasswordResetToken(ctx context.Context, user *models.User) (models.Token, error)
	ResetPassword(ctx context.Context, user *models.User, token, newPassword string) error
}

// RoleManager is the application facade over the role store.
type RoleManager interface {
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, role *models.Role) error

	FindByID(ctx context.Context, roleID string) (*models.Role, error)
	FindByName(ctx context.Context, roleName string) (*models.Role, error)
	Roles(ctx context.Context) ([]models.Role, error)
}

type AuthService interface {
	Register(ctx context.Context, user *models.User, password string) error
	Login(ctx context.Context, userName, password string) (*models.User, error)
	CreateToken(ctx context.Context, user *models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
