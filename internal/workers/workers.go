// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(stores *identity.Stores, cfg config.Workers, logger *logger.Logger) *Workers {
	logger.Debug().Msg("creating workers...")

	return &Workers{
		workers: []Worker{
			NewLockoutSweeper(stores.Users, cfg.LockoutSweepInterval, logger),
		},
	}
}

// Run starts every worker and blocks until all of them have returned.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}

	wg.Wait()
}
