// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"

	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
)

// withinUnitOfWork runs work in one transaction and normalizes its failure.
func withinUnitOfWork(ctx context.Context, uow store.UnitOfWork, fn string, work func(ctx context.Context) error) error {
	if err := uow.WithinTransaction(ctx, work); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("unit of work failed")
		return persistenceError(err)
	}

	return nil
}
