// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/libro/internal/platform/request"
	"github.com/taibuivan/libro/internal/platform/respond"
	"github.com/taibuivan/libro/pkg/loadstate"
)

// # Handler Implementation

// Handler implements the admin user and dashboard endpoints. The caller
// mounts it behind the Admin role guard.
type Handler struct {
	service *Service
}

// NewHandler constructs a new admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UserRoutes returns the endpoints mounted under /api/v1/admin/users.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listUsers)
	router.Post("/", handler.createUser)
	router.Put("/{id}", handler.updateUser)
	router.Delete("/{id}", handler.deleteUser)

	return router
}

// DashboardRoutes returns the endpoints mounted under /api/v1/admin/dashboard.
func (handler *Handler) DashboardRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.dashboard)
	return router
}

func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.service.ListUsers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, users)
}

func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	var input CreateUserInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.CreateUser(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, user)
}

func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateUserInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.UpdateUser(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteUser(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

type dashboardResponse struct {
	Phase     loadstate.Phase `json:"phase"`
	Dashboard *Dashboard      `json:"dashboard"`
}

func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	state := handler.service.DashboardState(request.Context())
	if err := state.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	dashboard, _ := state.Value()
	respond.OK(writer, dashboardResponse{Phase: state.Phase(), Dashboard: dashboard})
}
