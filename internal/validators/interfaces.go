// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks identity input (users, roles, claims, logins and
// HTTP requests) against the `validate` struct tags declared on the models.
//
// Handlers and managers depend on the [Validator] interface; the default
// implementation is backed by go-playground/validator.
package validators

import "context"

// Validator validates a value, optionally restricted to the named fields.
// Field names are the JSON names of the struct fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
