// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.services.RoleManager.Roles(r.Context())
	if err != nil {
		writeError(w, r, "*Handler.listRoles", err)
		return
	}

	_, _ = utils.WriteJSON(w, roles, http.StatusOK)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "*Handler.createRole", err)
		return
	}

	role := &models.Role{Name: req.Name}
	if err := h.services.RoleManager.Create(r.Context(), role); err != nil {
		writeError(w, r, "*Handler.createRole", err)
		return
	}

	_, _ = utils.WriteJSON(w, role, http.StatusCreated)
}

// deleteRole removes the role and its memberships. Former members are kept.
func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	role, err := h.services.RoleManager.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "*Handler.deleteRole", err)
		return
	}

	if err = h.services.RoleManager.Delete(ctx, role); err != nil {
		writeError(w, r, "*Handler.deleteRole", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
