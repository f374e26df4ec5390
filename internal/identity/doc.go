// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package identity stores users and roles on top of the object store in
// [github.com/MKhiriev/go-identity-keeper/internal/store].
//
// A user is an aggregate: its claims, external logins and role memberships
// live in their own tables but are always written and loaded together with
// the user row. Usernames, emails and role names are compared ignoring case.
//
// Deleting a user removes its claims, logins and memberships in the same
// transaction. Deleting a role only severs memberships; users are kept.
package identity
