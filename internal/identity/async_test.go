// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-identity-keeper/models"
)

func TestAsync_DeliversResult(t *testing.T) {
	env := newTestEnv(t)
	created := env.createUser(t, "lukz", "")

	ch := Async(context.Background(), func(ctx context.Context) (*models.User, error) {
		return env.users.FindByName(ctx, "LUKZ")
	})

	select {
	case res := <-ch:
		require.NoError(t, res.Err)
		assert.Equal(t, created.ID, res.Value.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("async result was not delivered")
	}

	_, open := <-ch
	assert.False(t, open)
}

func TestAsync_DeliversError(t *testing.T) {
	env := newTestEnv(t)

	res := <-Async(context.Background(), func(ctx context.Context) (*models.User, error) {
		return env.users.FindByID(ctx, "missing")
	})

	assert.ErrorIs(t, res.Err, ErrNotFound)
	assert.Nil(t, res.Value)
}
