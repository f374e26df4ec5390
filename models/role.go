// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Role is a named group users can be members of. Its lifecycle is
// independent from users: deleting a user never deletes a role.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required,max=256"`
}

// TableName returns the name of the database table
// associated with the Role model.
func (r Role) TableName() string {
	return "roles"
}
