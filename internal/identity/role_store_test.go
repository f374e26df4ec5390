// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestCreateRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.createRole(t, "ADM")
	assert.NotEmpty(t, role.ID)

	assert.ErrorIs(t, env.roles.CreateRole(ctx, &models.Role{Name: "adm"}), ErrDuplicateRoleName)
	assert.ErrorIs(t, env.roles.CreateRole(ctx, &models.Role{Name: " "}), ErrInvalidRole)
	assert.ErrorIs(t, env.roles.CreateRole(ctx, nil), ErrInvalidRole)
}

func TestCreateRole_DuplicateFoldsNonASCII(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	role := env.createRole(t, "Äußere")

	assert.ErrorIs(t, env.roles.CreateRole(ctx, &models.Role{Name: "äUSSERE"}), ErrDuplicateRoleName)

	found, err := env.roles.FindByName(ctx, "ÄUSSERE")
	require.NoError(t, err)
	assert.Equal(t, role.ID, found.ID)

	u := env.createUser(t, "lukz", "")
	require.NoError(t, env.users.AddToRole(ctx, u, "äußere"))
	in, err := env.users.IsInRole(ctx, u, "ÄUSSERE")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestFindRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	role := env.createRole(t, "Auditor")

	byID, err := env.roles.FindByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, *role, *byID)

	byName, err := env.roles.FindByName(ctx, "AUDITOR")
	require.NoError(t, err)
	assert.Equal(t, *role, *byName)

	_, err = env.roles.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.roles.FindByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adm := env.createRole(t, "ADM")
	env.createRole(t, "Auditor")

	adm.Name = "Admins"
	require.NoError(t, env.roles.UpdateRole(ctx, adm))

	found, err := env.roles.FindByName(ctx, "admins")
	require.NoError(t, err)
	assert.Equal(t, adm.ID, found.ID)

	adm.Name = "auditor"
	assert.ErrorIs(t, env.roles.UpdateRole(ctx, adm), ErrDuplicateRoleName)

	// changing only the case of its own name is allowed
	adm.Name = "ADMINS"
	assert.NoError(t, env.roles.UpdateRole(ctx, adm))

	assert.ErrorIs(t, env.roles.UpdateRole(ctx, &models.Role{ID: "missing", Name: "x"}), ErrNotFound)
}

func TestDeleteRole_SeversMemberships(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adm := env.createRole(t, "ADM")
	u := env.createUser(t, "lukz", "")
	require.NoError(t, env.users.AddToRole(ctx, u, "ADM"))

	require.NoError(t, env.roles.DeleteRole(ctx, adm))

	_, err := env.roles.FindByID(ctx, adm.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := env.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Roles)

	assert.ErrorIs(t, env.roles.DeleteRole(ctx, adm), ErrNotFound)
}

func TestListRoles_OrderedByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	roles, err := env.roles.ListRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)

	env.createRole(t, "Users")
	env.createRole(t, "Admins")

	roles, err = env.roles.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Admins", roles[0].Name)
	assert.Equal(t, "Users", roles[1].Name)
}
