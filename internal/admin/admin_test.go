// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/admin"
	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/pkg/loadstate"
	"github.com/taibuivan/libro/pkg/pointer"
)

type fakeStore struct {
	users       []*admin.User
	created     []admin.CreateUserInput
	updated     []admin.UpdateUserInput
	statsErr    error
	activityErr error
}

func (store *fakeStore) ListUsers(context.Context) ([]*admin.User, error) { return store.users, nil }

func (store *fakeStore) CreateUser(_ context.Context, input admin.CreateUserInput) (*admin.User, error) {
	store.created = append(store.created, input)
	return &admin.User{ID: 10, Name: input.Name, Email: input.Email, Role: input.Role}, nil
}

func (store *fakeStore) UpdateUser(_ context.Context, id int64, input admin.UpdateUserInput) (*admin.User, error) {
	store.updated = append(store.updated, input)
	return &admin.User{ID: id}, nil
}

func (store *fakeStore) DeleteUser(context.Context, int64) error { return nil }

func (store *fakeStore) Stats(context.Context) (*admin.Stats, error) {
	if store.statsErr != nil {
		return nil, store.statsErr
	}
	return &admin.Stats{TotalUsers: 3, TotalBooks: 12, ActiveBorrows: 4, PendingReturns: 1}, nil
}

func (store *fakeStore) RecentActivity(context.Context) ([]admin.Activity, error) {
	if store.activityErr != nil {
		return nil, store.activityErr
	}
	return []admin.Activity{{ID: 1, Type: admin.ActivityRegister, User: "Ada", Status: admin.StatusCompleted}}, nil
}

/*
TestCreateUserInput_Validate covers the create rules.
*/
func TestCreateUserInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		input  admin.CreateUserInput
		fields []string
	}{
		{"valid", admin.CreateUserInput{Name: "Ada", Email: "ada@libro.app", Password: "secret", Role: sec.RoleAdmin}, nil},
		{"short_password", admin.CreateUserInput{Name: "Ada", Email: "ada@libro.app", Password: "12345", Role: sec.RoleUser}, []string{"password"}},
		{"bad_role", admin.CreateUserInput{Name: "Ada", Email: "ada@libro.app", Password: "secret", Role: "Root"}, []string{"role"}},
		{"bad_email", admin.CreateUserInput{Name: "Ada", Email: "ada", Password: "secret", Role: sec.RoleUser}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			appError := apperr.As(err)
			require.NotNil(t, appError)
			fields := make([]string, 0, len(appError.Details))
			for _, detail := range appError.Details {
				fields = append(fields, detail.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

/*
TestUpdateUserInput_OnlySetFields verifies that nil fields are not validated.
*/
func TestUpdateUserInput_OnlySetFields(t *testing.T) {
	assert.NoError(t, admin.UpdateUserInput{Name: pointer.To("Grace")}.Validate())
	assert.Error(t, admin.UpdateUserInput{}.Validate(), "an empty update is rejected")
	assert.Error(t, admin.UpdateUserInput{Password: pointer.To("123")}.Validate())

	role := sec.Role("Owner")
	assert.Error(t, admin.UpdateUserInput{Role: &role}.Validate())
}

/*
TestService_UserWrites checks normalization and that invalid input stays local.
*/
func TestService_UserWrites(t *testing.T) {
	store := &fakeStore{}
	service := admin.NewService(store)
	ctx := context.Background()

	user, err := service.CreateUser(ctx, admin.CreateUserInput{Name: " Ada ", Email: "ada@libro.app", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role, "role defaults to User")
	assert.Equal(t, "Ada", user.Name)

	_, err = service.CreateUser(ctx, admin.CreateUserInput{Name: "Ada"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Len(t, store.created, 1)

	_, err = service.UpdateUser(ctx, 4, admin.UpdateUserInput{Name: pointer.To("Grace"), Password: pointer.To("")})
	require.NoError(t, err)
	require.Len(t, store.updated, 1)
	assert.Nil(t, store.updated[0].Password, "a blank password leaves it unchanged")
}

/*
TestService_ListUsersOrdered sorts by creation time.
*/
func TestService_ListUsersOrdered(t *testing.T) {
	at := func(day int) backend.Time { return backend.Time{Time: time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)} }
	store := &fakeStore{users: []*admin.User{{ID: 2, CreatedAt: at(5)}, {ID: 1, CreatedAt: at(1)}, {ID: 3, CreatedAt: at(9)}}}

	users, err := admin.NewService(store).ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, []int64{users[0].ID, users[1].ID, users[2].ID})
}

/*
TestService_Dashboard covers the parallel load and its failure state.
*/
func TestService_Dashboard(t *testing.T) {
	store := &fakeStore{}
	service := admin.NewService(store)

	state := service.DashboardState(context.Background())
	require.Equal(t, loadstate.Loaded, state.Phase())
	dashboard, ok := state.Value()
	require.True(t, ok)
	assert.Equal(t, 12, dashboard.Stats.TotalBooks)
	assert.Equal(t, "Ada registered", dashboard.Activity[0].Text())

	store.statsErr = apperr.Network(errors.New("refused"))
	state = service.DashboardState(context.Background())
	assert.Equal(t, loadstate.Failed, state.Phase())
	assert.True(t, apperr.HasCode(state.Err(), apperr.CodeNetwork))
	_, ok = state.Value()
	assert.False(t, ok)
}

/*
TestActivity_Text mirrors the feed wording.
*/
func TestActivity_Text(t *testing.T) {
	dune := pointer.To("Dune")

	tests := []struct {
		activity admin.Activity
		want     string
	}{
		{admin.Activity{Type: admin.ActivityBorrow, User: "Ada", Book: dune}, `Ada borrowed "Dune"`},
		{admin.Activity{Type: admin.ActivityReturn, User: "Ada", Book: dune}, `Ada returned "Dune"`},
		{admin.Activity{Type: admin.ActivityRegister, User: "Ada"}, "Ada registered"},
		{admin.Activity{Type: admin.ActivityAddBook, Book: dune}, `Added book "Dune"`},
		{admin.Activity{Type: "purge"}, "Unknown activity"},
	}

	for _, tt := range tests {
		t.Run(string(tt.activity.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.activity.Text())
		})
	}
}

/*
TestHandler_Dashboard renders the loaded state with activity text.
*/
func TestHandler_Dashboard(t *testing.T) {
	router := admin.NewHandler(admin.NewService(&fakeStore{})).DashboardRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"phase":"loaded"`)
	assert.Contains(t, recorder.Body.String(), `"text":"Ada registered"`)
}
