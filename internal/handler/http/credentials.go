// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// changePassword lets the authenticated user replace its own password.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if userID, ok := utils.GetUserIDFromContext(ctx); !ok || userID != chi.URLParam(r, "id") {
		writeError(w, r, "*Handler.changePassword", ErrForbidden)
		return
	}

	var req models.PasswordChangeRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "*Handler.changePassword", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.changePassword", err)
		return
	}

	if err = h.services.UserManager.ChangePassword(ctx, user, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, "*Handler.changePassword", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) passwordResetToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.passwordResetToken", err)
		return
	}

	token, err := h.services.UserManager.GeneratePasswordResetToken(r.Context(), user)
	if err != nil {
		writeError(w, r, "*Handler.passwordResetToken", err)
		return
	}

	_, _ = utils.WriteJSON(w, purposeTokenResponse(token), http.StatusCreated)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "*Handler.resetPassword", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.resetPassword", err)
		return
	}

	if err = h.services.UserManager.ResetPassword(r.Context(), user, req.Token, req.NewPassword); err != nil {
		writeError(w, r, "*Handler.resetPassword", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) emailConfirmationToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.emailConfirmationToken", err)
		return
	}

	token, err := h.services.UserManager.GenerateEmailConfirmationToken(r.Context(), user)
	if err != nil {
		writeError(w, r, "*Handler.emailConfirmationToken", err)
		return
	}

	_, _ = utils.WriteJSON(w, purposeTokenResponse(token), http.StatusCreated)
}

func (h *Handler) confirmEmail(w http.ResponseWriter, r *http.Request) {
	var req models.EmailConfirmationRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "*Handler.confirmEmail", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.confirmEmail", err)
		return
	}

	if err = h.services.UserManager.ConfirmEmail(r.Context(), user, req.Token); err != nil {
		writeError(w, r, "*Handler.confirmEmail", err)
		return
	}

	_, _ = utils.WriteJSON(w, user, http.StatusOK)
}

func purposeTokenResponse(token models.Token) models.PurposeTokenResponse {
	resp := models.PurposeTokenResponse{
		Token:   token.SignedString,
		Purpose: token.Purpose,
	}
	if token.ExpiresAt != nil {
		resp.ExpiresAt = token.ExpiresAt.Time
	}

	return resp
}
