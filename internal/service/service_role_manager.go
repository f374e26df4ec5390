// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// roleManager is the concrete implementation of RoleManager.
type roleManager struct {
	roles     identity.RoleStore
	validator validators.Validator
	logger    *logger.Logger
}

func NewRoleManager(roles identity.RoleStore, validator validators.Validator, logger *logger.Logger) RoleManager {
	return &roleManager{
		roles:     roles,
		validator: validator,
		logger:    logger,
	}
}

func (m *roleManager) Create(ctx context.Context, role *models.Role) error {
	log := logger.FromContext(ctx)

	if role == nil {
		return ErrInvalidDataProvided
	}
	if err := m.validator.Validate(ctx, role); err != nil {
		log.Err(err).Str("func", "*roleManager.Create").Msg("invalid role data provided")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := m.roles.CreateRole(ctx, role); err != nil {
		log.Err(err).Str("func", "*roleManager.Create").Str("name", role.Name).Msg("role creation ended with error")
		return fmt.Errorf("role creation ended with error: %w", err)
	}

	return nil
}

func (m *roleManager) Update(ctx context.Context, role *models.Role) error {
	log := logger.FromContext(ctx)

	if role == nil {
		return ErrInvalidDataProvided
	}
	if err := m.validator.Validate(ctx, role); err != nil {
		log.Err(err).Str("func", "*roleManager.Update").Msg("invalid role data provided")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := m.roles.UpdateRole(ctx, role); err != nil {
		log.Err(err).Str("func", "*roleManager.Update").Str("role_id", role.ID).Msg("role update ended with error")
		return fmt.Errorf("role update ended with error: %w", err)
	}

	return nil
}

// Delete removes role after severing its memberships. Users are kept.
func (m *roleManager) Delete(ctx context.Context, role *models.Role) error {
	if err := m.roles.DeleteRole(ctx, role); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*roleManager.Delete").Msg("role deletion ended with error")
		return fmt.Errorf("role deletion ended with error: %w", err)
	}

	return nil
}

func (m *roleManager) FindByID(ctx context.Context, roleID string) (*models.Role, error) {
	role, err := m.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role search by id failed: %w", err)
	}

	return role, nil
}

func (m *roleManager) FindByName(ctx context.Context, roleName string) (*models.Role, error) {
	role, err := m.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role search by name failed: %w", err)
	}

	return role, nil
}

func (m *roleManager) Roles(ctx context.Context) ([]models.Role, error) {
	roles, err := m.roles.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roles failed: %w", err)
	}

	return roles, nil
}
