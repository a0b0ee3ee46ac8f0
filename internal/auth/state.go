// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth manages the admin session: the bearer credential and the
// signed-in identity kept in the OS keychain, and the login, logout and
// "who am I" calls against the CMS API.
package auth

import (
	"strings"
)

// User is the signed-in admin identity stored under the adminUser key.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Display returns the best human identifier for the user.
func (u User) Display() string {
	switch {
	case strings.TrimSpace(u.Email) != "":
		return u.Email
	case strings.TrimSpace(u.Name) != "":
		return u.Name
	case strings.TrimSpace(u.ID) != "":
		return u.ID
	default:
		return "admin"
	}
}
