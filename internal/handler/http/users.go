// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-identity-keeper/internal/utils"
	"github.com/MKhiriev/go-identity-keeper/models"
)

// userFromPath loads the user named by the {id} URL parameter.
func (h *Handler) userFromPath(r *http.Request) (*models.User, error) {
	return h.services.UserManager.FindByID(r.Context(), chi.URLParam(r, "id"))
}

// listUsers returns all users, or the single user owning the address given
// in the "email" query parameter.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.services.UserManager.FindByEmail(ctx, email)
		if err != nil {
			writeError(w, r, "*Handler.listUsers", err)
			return
		}
		_, _ = utils.WriteJSON(w, []models.User{*user}, http.StatusOK)
		return
	}

	users, err := h.services.UserManager.Users(ctx)
	if err != nil {
		writeError(w, r, "*Handler.listUsers", err)
		return
	}

	_, _ = utils.WriteJSON(w, users, http.StatusOK)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.getUser", err)
		return
	}

	_, _ = utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdateRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "*Handler.updateUser", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.updateUser", err)
		return
	}

	req.Apply(user)
	if err = h.services.UserManager.Update(r.Context(), user); err != nil {
		writeError(w, r, "*Handler.updateUser", err)
		return
	}

	_, _ = utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.deleteUser", err)
		return
	}

	if err = h.services.UserManager.Delete(r.Context(), user); err != nil {
		writeError(w, r, "*Handler.deleteUser", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addClaim(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim
	if err := h.decode(r, &claim); err != nil {
		writeError(w, r, "*Handler.addClaim", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.addClaim", err)
		return
	}

	if err = h.services.UserManager.AddClaim(r.Context(), user, claim); err != nil {
		writeError(w, r, "*Handler.addClaim", err)
		return
	}

	_, _ = utils.WriteJSON(w, h.services.UserManager.GetClaims(user), http.StatusOK)
}

// removeClaim removes every claim of the user equal to the body claim.
func (h *Handler) removeClaim(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim
	if err := h.decode(r, &claim); err != nil {
		writeError(w, r, "*Handler.removeClaim", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.removeClaim", err)
		return
	}

	if err = h.services.UserManager.RemoveClaim(r.Context(), user, claim); err != nil {
		writeError(w, r, "*Handler.removeClaim", err)
		return
	}

	_, _ = utils.WriteJSON(w, h.services.UserManager.GetClaims(user), http.StatusOK)
}

func (h *Handler) addLogin(w http.ResponseWriter, r *http.Request) {
	var login models.Login
	if err := h.decode(r, &login); err != nil {
		writeError(w, r, "*Handler.addLogin", err)
		return
	}

	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.addLogin", err)
		return
	}

	if err = h.services.UserManager.AddLogin(r.Context(), user, login); err != nil {
		writeError(w, r, "*Handler.addLogin", err)
		return
	}

	_, _ = utils.WriteJSON(w, user.Logins, http.StatusOK)
}

func (h *Handler) removeLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.removeLogin", err)
		return
	}

	err = h.services.UserManager.RemoveLogin(r.Context(), user, chi.URLParam(r, "provider"), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, "*Handler.removeLogin", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) findByLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.UserManager.FindByLogin(r.Context(), chi.URLParam(r, "provider"), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, "*Handler.findByLogin", err)
		return
	}

	_, _ = utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) addToRole(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.addToRole", err)
		return
	}

	if err = h.services.UserManager.AddToRole(r.Context(), user, chi.URLParam(r, "role")); err != nil {
		writeError(w, r, "*Handler.addToRole", err)
		return
	}

	_, _ = utils.WriteJSON(w, user.Roles, http.StatusOK)
}

func (h *Handler) removeFromRole(w http.ResponseWriter, r *http.Request) {
	user, err := h.userFromPath(r)
	if err != nil {
		writeError(w, r, "*Handler.removeFromRole", err)
		return
	}

	if err = h.services.UserManager.RemoveFromRole(r.Context(), user, chi.URLParam(r, "role")); err != nil {
		writeError(w, r, "*Handler.removeFromRole", err)
		return
	}

	_, _ = utils.WriteJSON(w, user.Roles, http.StatusOK)
}
