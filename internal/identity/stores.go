// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
)

// Stores bundles the identity stores sharing one [store.DB].
type Stores struct {
	Users UserStore
	Roles RoleStore
}

func NewStores(db *store.DB, logger *logger.Logger) *Stores {
	return &Stores{
		Users: NewUserStore(db, logger),
		Roles: NewRoleStore(db, logger),
	}
}
