// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/crypto"
	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// userManager is the concrete implementation of UserManager.
// Store failures are returned wrapped, so identity errors such as
// identity.ErrNotFound stay matchable with errors.Is.
type userManager struct {
	users     identity.UserStore
	hasher    crypto.PasswordHasher
	validator validators.Validator

	// tokenSignKey, tokenIssuer and purposeTokenDuration configure the
	// email confirmation and password reset tokens.
	tokenSignKey         string
	tokenIssuer          string
	purposeTokenDuration time.Duration

	lockoutEnabledByDefault bool
	maxFailedAccessAttempts int
	lockoutDuration         time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// NewUserManager constructs a UserManager over users. Token parameters come
// from app and the lockout policy from lockout.
func NewUserManager(
	users identity.UserStore,
	hasher crypto.PasswordHasher,
	validator validators.Validator,
	app config.App,
	lockout config.Lockout,
	logger *logger.Logger,
) UserManager {
	return &userManager{
		users:                   users,
		hasher:                  hasher,
		validator:               validator,
		tokenSignKey:            app.TokenSignKey,
		tokenIssuer:             app.TokenIssuer,
		purposeTokenDuration:    app.PurposeTokenDuration,
		lockoutEnabledByDefault: lockout.EnabledByDefault,
		maxFailedAccessAttempts: lockout.MaxFailedAccessAttempts,
		lockoutDuration:         lockout.Duration,
		now:                     time.Now,
		logger:                  logger,
	}
}

// Create validates user, hashes password when one is given and persists the
// user with a fresh security stamp. The configured default can only switch
// lockout on; a caller that enabled it keeps it enabled.
func (m *userManager) Create(ctx context.Context, user *models.User, password string) error {
	log := logger.FromContext(ctx)

	if user == nil {
		return ErrInvalidDataProvided
	}
	if err := m.validator.Validate(ctx, user); err != nil {
		log.Err(err).Str("func", "*userManager.Create").Msg("invalid user data provided")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if password != "" {
		hash, err := m.hasher.Hash(password)
		if err != nil {
			log.Err(err).Str("func", "*userManager.Create").Msg("error hashing password")
			return fmt.Errorf("%w: %w", ErrPasswordHashing, err)
		}
		user.PasswordHash = hash
	}

	user.SecurityStamp = utils.NewSecurityStamp()
	if m.lockoutEnabledByDefault {
		user.LockoutEnabled = true
	}

	if err := m.users.CreateUser(ctx, user); err != nil {
		log.Err(err).Str("func", "*userManager.Create").Str("user_name", user.UserName).Msg("user creation ended with error")
		return fmt.Errorf("user creation ended with error: %w", err)
	}

	return nil
}

// Update validates and persists user together with its collections.
func (m *userManager) Update(ctx context.Context, user *models.User) error {
	log := logger.FromContext(ctx)

	if user == nil {
		return ErrInvalidDataProvided
	}
	if err := m.validator.Validate(ctx, user); err != nil {
		log.Err(err).Str("func", "*userManager.Update").Msg("invalid user data provided")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := m.users.UpdateUser(ctx, user); err != nil {
		log.Err(err).Str("func", "*userManager.Update").Str("user_id", user.ID).Msg("user update ended with error")
		return fmt.Errorf("user update ended with error: %w", err)
	}

	return nil
}

func (m *userManager) Delete(ctx context.Context, user *models.User) error {
	if err := m.users.DeleteUser(ctx, user); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userManager.Delete").Msg("user deletion ended with error")
		return fmt.Errorf("user deletion ended with error: %w", err)
	}

	return nil
}

func (m *userManager) FindByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user search by id failed: %w", err)
	}

	return user, nil
}

func (m *userManager) FindByName(ctx context.Context, userName string) (*models.User, error) {
	user, err := m.users.FindByName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("user search by name failed: %w", err)
	}

	return user, nil
}

func (m *userManager) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user search by email failed: %w", err)
	}

	return user, nil
}

func (m *userManager) FindByLogin(ctx context.Context, provider, providerKey string) (*models.User, error) {
	user, err := m.users.FindByLogin(ctx, provider, providerKey)
	if err != nil {
		return nil, fmt.Errorf("user search by login failed: %w", err)
	}

	return user, nil
}

func (m *userManager) Users(ctx context.Context) ([]models.User, error) {
	users, err := m.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users failed: %w", err)
	}

	return users, nil
}

// CheckPassword reports whether password matches the hash of user. Users
// without a local password never match.
func (m *userManager) CheckPassword(ctx context.Context, user *models.User, password string) (bool, error) {
	if user == nil || user.PasswordHash == "" {
		return false, nil
	}

	ok, err := m.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userManager.CheckPassword").Str("user_id", user.ID).Msg("stored password hash is unusable")
		return false, fmt.Errorf("%w: %w", ErrPasswordHashing, err)
	}

	return ok, nil
}

// ChangePassword replaces the password of user after checking the current
// one. The security stamp is rotated, invalidating outstanding tokens.
func (m *userManager) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	ok, err := m.CheckPassword(ctx, user, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}

	return m.setPassword(ctx, user, newPassword)
}

// setPassword hashes newPassword, rotates the security stamp and persists
// user. user is only changed when the update succeeds.
func (m *userManager) setPassword(ctx context.Context, user *models.User, newPassword string) error {
	log := logger.FromContext(ctx)

	if newPassword == "" {
		return ErrInvalidDataProvided
	}

	hash, err := m.hasher.Hash(newPassword)
	if err != nil {
		log.Err(err).Str("func", "*userManager.setPassword").Msg("error hashing password")
		return fmt.Errorf("%w: %w", ErrPasswordHashing, err)
	}

	updated := *user
	updated.PasswordHash = hash
	updated.SecurityStamp = utils.NewSecurityStamp()

	if err = m.users.UpdateUser(ctx, &updated); err != nil {
		log.Err(err).Str("func", "*userManager.setPassword").Str("user_id", user.ID).Msg("error saving new password")
		return fmt.Errorf("error saving new password: %w", err)
	}

	*user = updated

	return nil
}

func (m *userManager) AddClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	if err := m.validator.Validate(ctx, claim); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := m.users.AddClaim(ctx, user, claim); err != nil {
		return fmt.Errorf("adding claim failed: %w", err)
	}

	return nil
}

func (m *userManager) RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	if err := m.users.RemoveClaim(ctx, user, claim); err != nil {
		return fmt.Errorf("removing claim failed: %w", err)
	}

	return nil
}

func (m *userManager) GetClaims(user *models.User) []models.Claim {
	if user == nil {
		return nil
	}

	return user.Claims
}

func (m *userManager) AddLogin(ctx context.Context, user *models.User, login models.Login) error {
	if err := m.validator.Validate(ctx, login); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := m.users.AddLogin(ctx, user, login); err != nil {
		return fmt.Errorf("adding login failed: %w", err)
	}

	return nil
}

func (m *userManager) RemoveLogin(ctx context.Context, user *models.User, provider, providerKey string) error {
	if err := m.users.RemoveLogin(ctx, user, provider, providerKey); err != nil {
		return fmt.Errorf("removing login failed: %w", err)
	}

	return nil
}

func (m *userManager) AddToRole(ctx context.Context, user *models.User, roleName string) error {
	if err := m.users.AddToRole(ctx, user, roleName); err != nil {
		return fmt.Errorf("adding user to role failed: %w", err)
	}

	return nil
}

func (m *userManager) RemoveFromRole(ctx context.Context, user *models.User, roleName string) error {
	if err := m.users.RemoveFromRole(ctx, user, roleName); err != nil {
		return fmt.Errorf("removing user from role failed: %w", err)
	}

	return nil
}

func (m *userManager) IsInRole(ctx context.Context, user *models.User, roleName string) (bool, error) {
	in, err := m.users.IsInRole(ctx, user, roleName)
	if err != nil {
		return false, fmt.Errorf("role membership check failed: %w", err)
	}

	return in, nil
}

func (m *userManager) GetRoles(ctx context.Context, user *models.User) ([]string, error) {
	roles, err := m.users.GetRoles(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading roles failed: %w", err)
	}

	return roles, nil
}

func (m *userManager) IsEmailConfirmed(user *models.User) bool {
	return user != nil && user.EmailConfirmed
}
