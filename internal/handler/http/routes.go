// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// promhttp negotiates its own compression
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(withMetrics)
		r.Use(withGZip)

		// routes without authorization
		r.Post("/api/users/register", h.register)
		r.Post("/api/users/login", h.login)
		r.Get("/api/version", h.getBuildInfo)

		// routes with authorization
		r.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.Get("/api/users", h.listUsers)
			r.Get("/api/users/{id}", h.getUser)
			r.Put("/api/users/{id}", h.updateUser)
			r.Delete("/api/users/{id}", h.deleteUser)

			r.Post("/api/users/{id}/claims", h.addClaim)
			r.Delete("/api/users/{id}/claims", h.removeClaim)

			r.Post("/api/users/{id}/logins", h.addLogin)
			r.Delete("/api/users/{id}/logins/{provider}/{key}", h.removeLogin)
			r.Get("/api/logins/{provider}/{key}", h.findByLogin)

			r.Put("/api/users/{id}/roles/{role}", h.addToRole)
			r.Delete("/api/users/{id}/roles/{role}", h.removeFromRole)

			r.Post("/api/users/{id}/password", h.changePassword)
			r.Post("/api/users/{id}/password-reset-token", h.passwordResetToken)
			r.Post("/api/users/{id}/password-reset", h.resetPassword)
			r.Post("/api/users/{id}/email-confirmation-token", h.emailConfirmationToken)
			r.Post("/api/users/{id}/email-confirmation", h.confirmEmail)

			r.Get("/api/roles", h.listRoles)
			r.Post("/api/roles", h.createRole)
			r.Delete("/api/roles/{id}", h.deleteRole)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
