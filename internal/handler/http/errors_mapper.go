// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-identity-keeper/internal/identity"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/internal/service"
	"github.com/MKhiriev/go-identity-keeper/internal/store"
	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/internal/validators"
)

var errorStatusMap = map[error]int{
	ErrInvalidJSON: http.StatusBadRequest,
	ErrForbidden:   http.StatusForbidden,

	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrInvalidToken:        http.StatusBadRequest,
	service.ErrWrongPassword:       http.StatusUnauthorized,
	service.ErrLockedOut:           http.StatusLocked,
	service.ErrTokenCreationFailed: http.StatusInternalServerError,
	service.ErrPasswordHashing:     http.StatusInternalServerError,

	validators.ErrValidation:      http.StatusBadRequest,
	validators.ErrUnsupportedType: http.StatusInternalServerError,

	identity.ErrInvalidUser:            http.StatusBadRequest,
	identity.ErrInvalidRole:            http.StatusBadRequest,
	identity.ErrDuplicateUsername:      http.StatusConflict,
	identity.ErrDuplicateEmail:         http.StatusConflict,
	identity.ErrDuplicateRoleName:      http.StatusConflict,
	identity.ErrLoginAlreadyAssociated: http.StatusConflict,
	identity.ErrNotFound:               http.StatusNotFound,
	identity.ErrRoleNotFound:           http.StatusNotFound,

	// other persistence failures fall through to 500
	store.ErrRetryable: http.StatusServiceUnavailable,
}

// retryAfterSeconds is advertised with 503 responses.
const retryAfterSeconds = "1"

// statusFromError returns the mapped sentinel err matches and its status.
// When err matches several sentinels the lowest status wins, so a
// duplicate wrapped in a persistence failure is still a conflict.
func statusFromError(err error) (error, int) {
	var matched error
	status := http.StatusInternalServerError

	for target, s := range errorStatusMap {
		if !errors.Is(err, target) {
			continue
		}
		if matched == nil || s < status || (s == status && target.Error() < matched.Error()) {
			matched, status = target, s
		}
	}

	return matched, status
}

// writeError logs err and writes it as a JSON error body. Server errors are
// reported without details.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	matched, status := statusFromError(err)

	logger.FromRequest(r).Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	body := utils.ErrorBody{Error: http.StatusText(status)}
	if status < http.StatusInternalServerError && matched != nil {
		body.Error = matched.Error()
	}

	var validationErr *validators.ValidationError
	if errors.As(err, &validationErr) {
		body.Error = validationErr.Error()
		body.Fields = validationErr.Fields
	}

	_, _ = utils.WriteJSON(w, body, status)
}
