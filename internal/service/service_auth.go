// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/metrics"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// authService is the concrete implementation of AuthService.
// It signs users in through the UserManager, so the lockout policy applies
// to every password check, and issues access tokens for them.
type authService struct {
	users UserManager

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	// tokenDuration controls how long a newly issued access token remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService on top of users and populated
// with token parameters from cfg.
func NewAuthService(users UserManager, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		users:         users,
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// Register creates a new user account with a local password.
func (a *authService) Register(ctx context.Context, user *models.User, password string) error {
	if password == "" {
		logger.FromContext(ctx).Error().Str("func", "*authService.Register").Msg("empty password provided")
		return ErrInvalidDataProvided
	}

	return a.users.Create(ctx, user, password)
}

// Login authenticates userName with password.
//
// Unknown users and wrong passwords both yield ErrWrongPassword. A user that
// is locked out gets ErrLockedOut without the password being checked. Every
// wrong password of a lockout-enabled user counts towards the lockout; the
// attempt that reaches the limit already returns ErrLockedOut.
func (a *authService) Login(ctx context.Context, userName, password string) (*models.User, error) {
	log := logger.FromContext(ctx)

	if userName == "" || password == "" {
		log.Error().Str("func", "*authService.Login").Msg("invalid sign-in data provided")
		return nil, ErrInvalidDataProvided
	}

	user, err := a.users.FindByName(ctx, userName)
	if errors.Is(err, identity.ErrNotFound) {
		log.Info().Str("func", "*authService.Login").Str("user_name", userName).Msg("sign-in for unknown user")
		metrics.SignInsTotal.WithLabelValues(metrics.SignInWrongPassword).Inc()
		return nil, ErrWrongPassword
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Str("user_name", userName).Msg("user search by name failed")
		metrics.SignInsTotal.WithLabelValues(metrics.SignInError).Inc()
		return nil, fmt.Errorf("user search by name failed: %w", err)
	}

	if a.users.IsLockedOut(user) {
		log.Info().Str("func", "*authService.Login").Str("user_id", user.ID).Msg("sign-in for locked out user")
		metrics.SignInsTotal.WithLabelValues(metrics.SignInLockedOut).Inc()
		return nil, ErrLockedOut
	}

	ok, err := a.users.CheckPassword(ctx, user, password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues(metrics.SignInError).Inc()
		return nil, err
	}

	if !ok {
		if user.LockoutEnabled {
			if err = a.users.AccessFailed(ctx, user); err != nil {
				metrics.SignInsTotal.WithLabelValues(metrics.SignInError).Inc()
				return nil, err
			}
			if a.users.IsLockedOut(user) {
				metrics.SignInsTotal.WithLabelValues(metrics.SignInLockedOut).Inc()
				return nil, ErrLockedOut
			}
		}

		log.Info().Str("func", "*authService.Login").Str("user_id", user.ID).Int("access_failed_count", a.users.GetAccessFailedCount(user)).Msg("wrong password")
		metrics.SignInsTotal.WithLabelValues(metrics.SignInWrongPassword).Inc()
		return nil, ErrWrongPassword
	}

	if a.users.GetAccessFailedCount(user) > 0 {
		if err = a.users.ResetAccessFailedCount(ctx, user); err != nil {
			metrics.SignInsTotal.WithLabelValues(metrics.SignInError).Inc()
			return nil, err
		}
	}

	metrics.SignInsTotal.WithLabelValues(metrics.SignInSuccess).Inc()

	return user, nil
}

// CreateToken issues a signed access token for user.
func (a *authService) CreateToken(ctx context.Context, user *models.User) (models.Token, error) {
	if user == nil {
		return models.Token{}, ErrInvalidDataProvided
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.ID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.CreateToken").Msg("error generating access token")
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates tokenString and returns it when it is an access
// token. Any failure is reported as ErrInvalidToken.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrInvalidToken
	}
	if token.Purpose != models.PurposeAccess {
		logger.FromContext(ctx).Error().Str("func", "*authService.ParseToken").Str("purpose", token.Purpose).Msg("purpose token used for access")
		return models.Token{}, ErrInvalidToken
	}

	return token, nil
}
