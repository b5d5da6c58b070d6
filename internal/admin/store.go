// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import "context"

// Store forwards admin operations to the backend.
type Store interface {
	ListUsers(ctx context.Context) ([]*User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id int64) error

	Stats(ctx context.Context) (*Stats, error)
	RecentActivity(ctx context.Context) ([]Activity, error)
}
