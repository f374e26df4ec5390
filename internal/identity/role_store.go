// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// roleStore is the [store.DB]-backed implementation of [RoleStore].
type roleStore struct {
	db     *store.DB
	tables *tables
	ids    utils.IDGenerator
}

// NewRoleStore constructs a [RoleStore] on top of db.
func NewRoleStore(db *store.DB, log *logger.Logger) RoleStore {
	log.Debug().Msg("creating role store")
	return &roleStore{
		db:     db,
		tables: newTables(db),
		ids:    utils.NewUUIDGenerator(),
	}
}

// CreateRole persists role, assigning an id when it has none.
func (s *roleStore) CreateRole(ctx context.Context, role *models.Role) error {
	if role == nil || strings.TrimSpace(role.Name) == "" {
		return ErrInvalidRole
	}

	row := toRoleRow(role)
	if row.ID == "" {
		row.ID = s.ids.Generate()
	}

	err := withinUnitOfWork(ctx, s.db, "*roleStore.CreateRole", func(ctx context.Context) error {
		if err := s.checkUnique(ctx, "", row.Name); err != nil {
			return err
		}

		if err := s.tables.roles.Save(ctx, &row); err != nil {
			if errors.Is(err, store.ErrUniqueViolation) {
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrDuplicateRoleName, err)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	role.ID = row.ID

	return nil
}

// UpdateRole renames role.
func (s *roleStore) UpdateRole(ctx context.Context, role *models.Role) error {
	if role == nil || strings.TrimSpace(role.Name) == "" {
		return ErrInvalidRole
	}

	return withinUnitOfWork(ctx, s.db, "*roleStore.UpdateRole", func(ctx context.Context) error {
		if err := s.checkUnique(ctx, role.ID, role.Name); err != nil {
			return err
		}

		row := toRoleRow(role)
		if err := s.tables.roles.Update(ctx, &row); err != nil {
			switch {
			case errors.Is(err, store.ErrNoRowsAffected):
				return ErrNotFound
			case errors.Is(err, store.ErrUniqueViolation):
				return fmt.Errorf("%w: %w: %w", ErrPersistenceFailure, ErrDuplicateRoleName, err)
			default:
				return err
			}
		}

		return nil
	})
}

// DeleteRole severs every membership to role and deletes it. Users stay.
func (s *roleStore) DeleteRole(ctx context.Context, role *models.Role) error {
	if role == nil {
		return ErrNotFound
	}

	return withinUnitOfWork(ctx, s.db, "*roleStore.DeleteRole", func(ctx context.Context) error {
		if _, err := s.tables.userRoles.DeleteWhere(ctx, sq.Eq{"role_id": role.ID}); err != nil {
			return err
		}

		if err := s.tables.roles.Delete(ctx, &roleRow{ID: role.ID}); err != nil {
			if errors.Is(err, store.ErrNoRowsAffected) {
				return ErrNotFound
			}
			return err
		}

		return nil
	})
}

func (s *roleStore) FindByID(ctx context.Context, roleID string) (*models.Role, error) {
	var role *models.Role

	err := withinUnitOfWork(ctx, s.db, "*roleStore.FindByID", func(ctx context.Context) error {
		row, err := s.tables.roles.GetByID(ctx, roleID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		r := row.toModel()
		role = &r

		return nil
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// FindByName looks a role up by name ignoring case.
func (s *roleStore) FindByName(ctx context.Context, roleName string) (*models.Role, error) {
	var role *models.Role

	err := withinUnitOfWork(ctx, s.db, "*roleStore.FindByName", func(ctx context.Context) error {
		row, found, err := findRoleByName(ctx, s.tables, roleName)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		r := row.toModel()
		role = &r

		return nil
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// ListRoles returns every role ordered by name.
func (s *roleStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles := make([]models.Role, 0)

	err := withinUnitOfWork(ctx, s.db, "*roleStore.ListRoles", func(ctx context.Context) error {
		rows, err := s.tables.roles.Query(ctx, nil, "normalized_name")
		if err != nil {
			return err
		}
		for _, r := range rows {
			roles = append(roles, r.toModel())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return roles, nil
}

func (s *roleStore) checkUnique(ctx context.Context, excludeID, name string) error {
	pred := sq.And{sq.Eq{"normalized_name": normalizeKey(name)}}
	if excludeID != "" {
		pred = append(pred, sq.NotEq{"id": excludeID})
	}

	n, err := s.tables.roles.Count(ctx, pred)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateRoleName
	}

	return nil
}
