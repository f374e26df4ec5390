// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// User is the identity aggregate root. It owns its claims, external logins and
// role memberships; they are persisted and loaded together with the user.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the opaque unique identifier of the user. It is assigned on
	// creation when empty and never changes afterwards.
	ID string `json:"id"`

	// UserName is unique across all users, compared case-insensitively.
	UserName string `json:"user_name" validate:"required,max=256"`

	// PasswordHash is the encoded password hash. Empty means the user has no
	// local password (external logins only).
	PasswordHash string `json:"-"`

	// SecurityStamp changes whenever credentials change. Purpose tokens are
	// bound to it, so rotating the stamp invalidates outstanding tokens.
	SecurityStamp string `json:"-"`

	Email          string `json:"email,omitempty" validate:"omitempty,email,max=256"`
	EmailConfirmed bool   `json:"email_confirmed"`

	PhoneNumber          string `json:"phone_number,omitempty" validate:"omitempty,max=64"`
	PhoneNumberConfirmed bool   `json:"phone_number_confirmed"`

	TwoFactorEnabled bool `json:"two_factor_enabled"`

	// LockoutEnd is the moment the lockout expires. Nil means not locked out.
	LockoutEnd        *time.Time `json:"lockout_end,omitempty"`
	LockoutEnabled    bool       `json:"lockout_enabled"`
	AccessFailedCount int        `json:"access_failed_count"`

	Claims []Claim `json:"claims"`
	Logins []Login `json:"logins"`

	// Roles holds the names of the roles the user is a member of.
	Roles []string `json:"roles"`
}

// Claim is a (type, value) statement about the user.
type Claim struct {
	Type  string `json:"type" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Login links the user to an external login provider. (Provider, ProviderKey)
// identifies at most one user.
type Login struct {
	Provider            string `json:"provider" validate:"required"`
	ProviderKey         string `json:"provider_key" validate:"required"`
	ProviderDisplayName string `json:"provider_display_name,omitempty"`
}

// HasClaim reports whether the user holds the exact (type, value) pair.
func (u *User) HasClaim(claim Claim) bool {
	for _, c := range u.Claims {
		if c == claim {
			return true
		}
	}
	return false
}

// HasLogin reports whether the user holds the (provider, providerKey) login.
func (u *User) HasLogin(provider, providerKey string) bool {
	for _, l := range u.Logins {
		if l.Provider == provider && l.ProviderKey == providerKey {
			return true
		}
	}
	return false
}

// HasRole reports whether roleName is among the user's roles, ignoring case.
func (u *User) HasRole(roleName string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, roleName) {
			return true
		}
	}
	return false
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
