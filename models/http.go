// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// RegisterRequest is the body of POST /api/users/register.
type RegisterRequest struct {
	UserName    string `json:"user_name" validate:"required,max=256"`
	Email       string `json:"email,omitempty" validate:"omitempty,email,max=256"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=64"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

// User builds the user to register. The password is hashed separately.
func (r RegisterRequest) User() User {
	return User{
		UserName:    r.UserName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
}

// SignInRequest is the body of POST /api/users/login.
type SignInRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordChangeRequest is the body of POST /api/users/{id}/password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// PasswordResetRequest is the body of POST /api/users/{id}/password-reset.
// Token is a password reset token issued for the same user.
type PasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// EmailConfirmationRequest is the body of
// POST /api/users/{id}/email-confirmation.
type EmailConfirmationRequest struct {
	Token string `json:"token" validate:"required"`
}

// RoleRequest is the body of POST /api/roles.
type RoleRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

// UserUpdateRequest is the body of PUT /api/users/{id}. It carries the
// profile fields a client may change; credentials and lockout state are
// changed through their own endpoints.
type UserUpdateRequest struct {
	UserName             string `json:"user_name" validate:"required,max=256"`
	Email                string `json:"email,omitempty" validate:"omitempty,email,max=256"`
	PhoneNumber          string `json:"phone_number,omitempty" validate:"omitempty,max=64"`
	PhoneNumberConfirmed bool   `json:"phone_number_confirmed"`
	TwoFactorEnabled     bool   `json:"two_factor_enabled"`
	LockoutEnabled       bool   `json:"lockout_enabled"`
}

// Apply copies the request onto user. A changed email is no longer
// confirmed.
func (r UserUpdateRequest) Apply(user *User) {
	if !strings.EqualFold(user.Email, r.Email) {
		user.EmailConfirmed = false
	}

	user.UserName = r.UserName
	user.Email = r.Email
	user.PhoneNumber = r.PhoneNumber
	user.PhoneNumberConfirmed = r.PhoneNumberConfirmed
	user.TwoFactorEnabled = r.TwoFactorEnabled
	user.LockoutEnabled = r.LockoutEnabled
}
