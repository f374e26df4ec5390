// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"database/sql"
	"sort"
	"time"

	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type userRow struct {
	ID                   string
	UserName             string
	NormalizedUserName   string
	Email                string
	NormalizedEmail      string
	EmailConfirmed       bool
	PasswordHash         sql.NullString
	SecurityStamp        string
	PhoneNumber          string
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool
	LockoutEnd           sql.NullTime
	LockoutEnabled       bool
	AccessFailedCount    int
}

var userMapping = store.Mapping[userRow]{
	Table: "users",
	Columns: []string{
		"id", "user_name", "normalized_user_name", "email", "normalized_email",
		"email_confirmed", "password_hash", "security_stamp",
		"phone_number", "phone_number_confirmed", "two_factor_enabled",
		"lockout_end", "lockout_enabled", "access_failed_count",
	},
	KeyColumns: []string{"id"},
	Values: func(r *userRow) []any {
		return []any{
			r.ID, r.UserName, r.NormalizedUserName, r.Email, r.NormalizedEmail,
			r.EmailConfirmed, r.PasswordHash, r.SecurityStamp,
			r.PhoneNumber, r.PhoneNumberConfirmed, r.TwoFactorEnabled,
			r.LockoutEnd, r.LockoutEnabled, r.AccessFailedCount,
		}
	},
	Targets: func(r *userRow) []any {
		return []any{
			&r.ID, &r.UserName, &r.NormalizedUserName, &r.Email, &r.NormalizedEmail,
			&r.EmailConfirmed, &r.PasswordHash, &r.SecurityStamp,
			&r.PhoneNumber, &r.PhoneNumberConfirmed, &r.TwoFactorEnabled,
			&r.LockoutEnd, &r.LockoutEnabled, &r.AccessFailedCount,
		}
	},
}

type roleRow struct {
	ID             string
	Name           string
	NormalizedName string
}

var roleMapping = store.Mapping[roleRow]{
	Table:      "roles",
	Columns:    []string{"id", "name", "normalized_name"},
	KeyColumns: []string{"id"},
	Values:     func(r *roleRow) []any { return []any{r.ID, r.Name, r.NormalizedName} },
	Targets:    func(r *roleRow) []any { return []any{&r.ID, &r.Name, &r.NormalizedName} },
}

type claimRow struct {
	ID     string
	UserID string
	Type   string
	Value  string
}

var claimMapping = store.Mapping[claimRow]{
	Table:      "user_claims",
	Columns:    []string{"id", "user_id", "claim_type", "claim_value"},
	KeyColumns: []string{"id"},
	Values:     func(r *claimRow) []any { return []any{r.ID, r.UserID, r.Type, r.Value} },
	Targets:    func(r *claimRow) []any { return []any{&r.ID, &r.UserID, &r.Type, &r.Value} },
}

type loginRow struct {
	Provider            string
	ProviderKey         string
	ProviderDisplayName string
	UserID              string
}

var loginMapping = store.Mapping[loginRow]{
	Table:      "user_logins",
	Columns:    []string{"login_provider", "provider_key", "provider_display_name", "user_id"},
	KeyColumns: []string{"login_provider", "provider_key"},
	Values: func(r *loginRow) []any {
		return []any{r.Provider, r.ProviderKey, r.ProviderDisplayName, r.UserID}
	},
	Targets: func(r *loginRow) []any {
		return []any{&r.Provider, &r.ProviderKey, &r.ProviderDisplayName, &r.UserID}
	},
}

type userRoleRow struct {
	UserID string
	RoleID string
}

var userRoleMapping = store.Mapping[userRoleRow]{
	Table:      "user_roles",
	Columns:    []string{"user_id", "role_id"},
	KeyColumns: []string{"user_id", "role_id"},
	Values:     func(r *userRoleRow) []any { return []any{r.UserID, r.RoleID} },
	Targets:    func(r *userRoleRow) []any { return []any{&r.UserID, &r.RoleID} },
}

// tables groups the gateways of the identity schema.
type tables struct {
	users     *store.Table[userRow]
	roles     *store.Table[roleRow]
	claims    *store.Table[claimRow]
	logins    *store.Table[loginRow]
	userRoles *store.Table[userRoleRow]
}

func newTables(db *store.DB) *tables {
	return &tables{
		users:     store.NewTable(db, userMapping),
		roles:     store.NewTable(db, roleMapping),
		claims:    store.NewTable(db, claimMapping),
		logins:    store.NewTable(db, loginMapping),
		userRoles: store.NewTable(db, userRoleMapping),
	}
}

// lockout timestamps are kept in UTC at microsecond precision, the finest
// resolution every supported backend stores.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func toUserRow(u *models.User) userRow {
	row := userRow{
		ID:                   u.ID,
		UserName:             u.UserName,
		NormalizedUserName:   normalizeKey(u.UserName),
		Email:                u.Email,
		NormalizedEmail:      normalizeKey(u.Email),
		EmailConfirmed:       u.EmailConfirmed,
		PasswordHash:         sql.NullString{String: u.PasswordHash, Valid: u.PasswordHash != ""},
		SecurityStamp:        u.SecurityStamp,
		PhoneNumber:          u.PhoneNumber,
		PhoneNumberConfirmed: u.PhoneNumberConfirmed,
		TwoFactorEnabled:     u.TwoFactorEnabled,
		LockoutEnabled:       u.LockoutEnabled,
		AccessFailedCount:    u.AccessFailedCount,
	}
	if u.LockoutEnd != nil {
		row.LockoutEnd = sql.NullTime{Time: normalizeTime(*u.LockoutEnd), Valid: true}
	}

	return row
}

// toModel builds a user with empty collections; loaders fill them in.
func (r userRow) toModel() models.User {
	u := models.User{
		ID:                   r.ID,
		UserName:             r.UserName,
		Email:                r.Email,
		EmailConfirmed:       r.EmailConfirmed,
		PasswordHash:         r.PasswordHash.String,
		SecurityStamp:        r.SecurityStamp,
		PhoneNumber:          r.PhoneNumber,
		PhoneNumberConfirmed: r.PhoneNumberConfirmed,
		TwoFactorEnabled:     r.TwoFactorEnabled,
		LockoutEnabled:       r.LockoutEnabled,
		AccessFailedCount:    r.AccessFailedCount,
		Claims:               []models.Claim{},
		Logins:               []models.Login{},
		Roles:                []string{},
	}
	if r.LockoutEnd.Valid {
		end := r.LockoutEnd.Time.UTC()
		u.LockoutEnd = &end
	}

	return u
}

func toRoleRow(r *models.Role) roleRow {
	return roleRow{ID: r.ID, Name: r.Name, NormalizedName: normalizeKey(r.Name)}
}

func (r roleRow) toModel() models.Role {
	return models.Role{ID: r.ID, Name: r.Name}
}

func (r claimRow) toModel() models.Claim {
	return models.Claim{Type: r.Type, Value: r.Value}
}

func (r loginRow) toModel() models.Login {
	return models.Login{
		Provider:            r.Provider,
		ProviderKey:         r.ProviderKey,
		ProviderDisplayName: r.ProviderDisplayName,
	}
}

func sortRoleNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return normalizeKey(names[i]) < normalizeKey(names[j])
	})
}
