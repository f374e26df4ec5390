// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"errors"
	"fmt"
)

// Typed failures of the identity stores. Callers match them with [errors.Is].
var (
	// ErrInvalidUser is returned when a user lacks a username.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidRole is returned when a role lacks a name.
	ErrInvalidRole = errors.New("invalid role")

	// ErrDuplicateUsername is returned when another user already has the
	// same username, compared case-insensitively.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrDuplicateEmail is returned when another user already has the same
	// non-empty email, compared case-insensitively.
	ErrDuplicateEmail = errors.New("email is already taken")

	// ErrDuplicateRoleName is returned when another role already has the
	// same name, compared case-insensitively.
	ErrDuplicateRoleName = errors.New("role name is already taken")

	// ErrNotFound is returned when a user or role looked up by id, name,
	// email or login does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRoleNotFound is returned when a membership refers to a role that
	// does not exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrLoginAlreadyAssociated is returned when an external login is
	// already linked to a user.
	ErrLoginAlreadyAssociated = errors.New("login is already associated with a user")

	// ErrPersistenceFailure wraps any failure of the underlying store. The
	// unit of work has been rolled back when it is returned. Transient
	// failures also match [store.ErrRetryable]; retrying is left to the
	// caller.
	ErrPersistenceFailure = errors.New("persistence failure")
)

var domainErrors = []error{
	ErrInvalidUser,
	ErrInvalidRole,
	ErrDuplicateUsername,
	ErrDuplicateEmail,
	ErrDuplicateRoleName,
	ErrNotFound,
	ErrRoleNotFound,
	ErrLoginAlreadyAssociated,
	ErrPersistenceFailure,
}

// persistenceError wraps a store failure unless it already is a typed
// identity failure.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}

	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
}
