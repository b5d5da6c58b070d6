// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/libro/pkg/loadstate"
)

// Service runs the admin operations.
type Service struct {
	store Store
}

// NewService constructs a new [Service].
func NewService(store Store) *Service {
	return &Service{store: store}
}

// # Users

// ListUsers returns every account, oldest first.
func (service *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := service.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(users, func(a, b *User) int { return a.CreatedAt.Compare(b.CreatedAt.Time) })
	return users, nil
}

// CreateUser validates input and creates the account.
func (service *Service) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return service.store.CreateUser(ctx, input)
}

// UpdateUser validates the set fields and applies them.
func (service *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return service.store.UpdateUser(ctx, id, input)
}

// DeleteUser removes the account.
func (service *Service) DeleteUser(ctx context.Context, id int64) error {
	return service.store.DeleteUser(ctx, id)
}

// # Dashboard

/*
LoadDashboard fetches the counters and the activity feed concurrently.

The first failure cancels the other request and is returned; a dashboard is
never shown half loaded.
*/
func (service *Service) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		stats    *Stats
		activity []Activity
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error
		stats, err = service.store.Stats(groupCtx)
		return err
	})

	group.Go(func() error {
		var err error
		activity, err = service.store.RecentActivity(groupCtx)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if activity == nil {
		activity = []Activity{}
	}
	return &Dashboard{Stats: *stats, Activity: activity}, nil
}

// DashboardState loads the dashboard as a view state: Loaded or Failed.
func (service *Service) DashboardState(ctx context.Context) loadstate.State[*Dashboard] {
	return loadstate.From[*Dashboard](service.LoadDashboard(ctx))
}
