// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantMatched error
		wantStatus  int
	}{
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
		{name: "not found", err: fmt.Errorf("lookup: %w", identity.ErrNotFound), wantMatched: identity.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "locked out", err: service.ErrLockedOut, wantMatched: service.ErrLockedOut, wantStatus: http.StatusLocked},
		{
			name:        "duplicate inside persistence failure",
			err:         fmt.Errorf("%w: %w: %w", identity.ErrPersistenceFailure, identity.ErrDuplicateEmail, errors.New("23505")),
			wantMatched: identity.ErrDuplicateEmail,
			wantStatus:  http.StatusConflict,
		},
		{
			name:       "plain persistence failure",
			err:        fmt.Errorf("%w: %w", identity.ErrPersistenceFailure, errors.New("conn reset")),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:        "retryable persistence failure",
			err:         fmt.Errorf("%w: %w: %w: %w", identity.ErrPersistenceFailure, store.ErrExecutingStatement, store.ErrRetryable, errors.New("40P01")),
			wantMatched: store.ErrRetryable,
			wantStatus:  http.StatusServiceUnavailable,
		},
		{
			name:       "validation",
			err:        fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, &validators.ValidationError{Fields: map[string]string{"name": "name is required"}}),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, status := statusFromError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMatched != nil {
				assert.Equal(t, tt.wantMatched, matched)
			}
		})
	}
}
