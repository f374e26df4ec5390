// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// GenerateEmailConfirmationToken issues a token that confirms the current
// email of user.
func (m *userManager) GenerateEmailConfirmationToken(ctx context.Context, user *models.User) (models.Token, error) {
	if user == nil || user.Email == "" {
		return models.Token{}, ErrInvalidDataProvided
	}

	return m.generatePurposeToken(ctx, user, models.PurposeEmailConfirmation)
}

// ConfirmEmail marks the email of user as confirmed when token is a valid
// email confirmation token for user.
func (m *userManager) ConfirmEmail(ctx context.Context, user *models.User, token string) error {
	if err := m.verifyPurposeToken(ctx, user, models.PurposeEmailConfirmation, token); err != nil {
		return err
	}

	updated := *user
	updated.EmailConfirmed = true
	if err := m.users.UpdateUser(ctx, &updated); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userManager.ConfirmEmail").Msg("error saving confirmed email")
		return fmt.Errorf("error saving confirmed email: %w", err)
	}

	*user = updated

	return nil
}

// GeneratePasswordResetToken issues a token that allows one password reset.
func (m *userManager) GeneratePasswordResetToken(ctx context.Context, user *models.User) (models.Token, error) {
	if user == nil {
		return models.Token{}, ErrInvalidDataProvided
	}

	return m.generatePurposeToken(ctx, user, models.PurposeResetPassword)
}

// ResetPassword sets newPassword when token is a valid password reset token
// for user. Rotating the security stamp makes the token single-use.
func (m *userManager) ResetPassword(ctx context.Context, user *models.User, token, newPassword string) error {
	if err := m.verifyPurposeToken(ctx, user, models.PurposeResetPassword, token); err != nil {
		return err
	}

	return m.setPassword(ctx, user, newPassword)
}

func (m *userManager) generatePurposeToken(ctx context.Context, user *models.User, purpose string) (models.Token, error) {
	token, err := utils.GeneratePurposeToken(m.tokenIssuer, user.ID, purpose, user.SecurityStamp, m.purposeTokenDuration, m.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userManager.generatePurposeToken").Str("purpose", purpose).Msg("error generating token")
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// verifyPurposeToken checks the signature, expiry, owner and purpose of
// tokenString and that it was issued against the stored security stamp.
func (m *userManager) verifyPurposeToken(ctx context.Context, user *models.User, purpose, tokenString string) error {
	log := logger.FromContext(ctx)

	if user == nil {
		return ErrInvalidDataProvided
	}

	token, err := utils.ValidateAndParseJWTToken(tokenString, m.tokenSignKey, m.tokenIssuer)
	if err != nil {
		log.Err(err).Str("func", "*userManager.verifyPurposeToken").Str("purpose", purpose).Msg("token rejected")
		return ErrInvalidToken
	}
	if token.UserID != user.ID || token.Purpose != purpose {
		log.Error().Str("func", "*userManager.verifyPurposeToken").Str("purpose", purpose).Str("token_purpose", token.Purpose).Msg("token issued for another user or purpose")
		return ErrInvalidToken
	}

	stored, err := m.users.FindByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("user search by id failed: %w", err)
	}
	if token.Stamp == "" || token.Stamp != stored.SecurityStamp {
		log.Error().Str("func", "*userManager.verifyPurposeToken").Str("purpose", purpose).Msg("token issued against an outdated security stamp")
		return ErrInvalidToken
	}

	return nil
}
