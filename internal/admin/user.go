// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin implements the administrator screens that are not about books
or borrows: user management and the dashboard.

Every payload is a closed, validated record. Validation runs before the
backend is called, so a malformed edit never leaves the gateway.
*/
package admin

import (
	"strings"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/platform/validate"
	"github.com/taibuivan/libro/pkg/pointer"
)

// MinPasswordLength is the shortest password an admin may set.
const MinPasswordLength = 6

// User is an account as listed to administrators.
type User struct {
	ID        int64        `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      sec.Role     `json:"role"`
	CreatedAt backend.Time `json:"createdAt"`
	UpdatedAt backend.Time `json:"updatedAt"`
}

// CreateUserInput is the payload of POST /admin/users.
type CreateUserInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     sec.Role `json:"role"`
}

// Normalize trims the input and defaults the role to User.
func (input *CreateUserInput) Normalize() {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if strings.TrimSpace(string(input.Role)) == "" {
		input.Role = sec.RoleUser
	}
}

// Validate checks every field.
func (input CreateUserInput) Validate() error {
	v := &validate.Validator{}
	v.Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		Required("email", input.Email).
		Email("email", input.Email).
		MinLen("password", input.Password, MinPasswordLength).
		OneOf("role", string(input.Role), string(sec.RoleUser), string(sec.RoleAdmin))
	return v.Err()
}

// UpdateUserInput is the payload of PUT /admin/users/{id}. Nil fields are
// left unchanged and are not validated.
type UpdateUserInput struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Password *string   `json:"password,omitempty"`
	Role     *sec.Role `json:"role,omitempty"`
}

// Normalize trims the set fields and drops an empty password, which the
// editor sends when the password is left unchanged.
func (input *UpdateUserInput) Normalize() {
	if input.Name != nil {
		input.Name = pointer.To(strings.TrimSpace(*input.Name))
	}
	if input.Email != nil {
		input.Email = pointer.To(strings.TrimSpace(*input.Email))
	}
	if pointer.Blank(input.Password) {
		input.Password = nil
	}
}

// Empty reports whether the update changes nothing.
func (input UpdateUserInput) Empty() bool {
	return input.Name == nil && input.Email == nil && input.Password == nil && input.Role == nil
}

// Validate checks the fields that are set.
func (input UpdateUserInput) Validate() error {
	v := &validate.Validator{}

	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 100)
	}
	if input.Email != nil {
		v.Required("email", *input.Email).Email("email", *input.Email)
	}
	if input.Password != nil {
		v.MinLen("password", *input.Password, MinPasswordLength)
	}
	if input.Role != nil {
		v.OneOf("role", string(*input.Role), string(sec.RoleUser), string(sec.RoleAdmin))
	}
	v.Custom("body", input.Empty(), "Nothing to update")

	return v.Err()
}
