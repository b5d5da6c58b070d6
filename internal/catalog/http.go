// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/libro/internal/platform/request"
	"github.com/taibuivan/libro/internal/platform/respond"
	"github.com/taibuivan/libro/pkg/pagination"
	"github.com/taibuivan/libro/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer for book discovery and inventory.
type Handler struct {
	service *Service
	now     func() time.Time
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// Routes returns the reader endpoints, mounted under /api/v1/books.
//
//   - GET /            : Paginated list (?search, ?category, ?page, ?limit).
//   - GET /categories  : Fixed category list, headed by "All Categories".
//   - GET /{id}        : One book.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listBooks)
	router.Get("/categories", handler.listCategories)
	router.Get("/{id}", handler.getBook)

	return router
}

// AdminRoutes returns the inventory endpoints, mounted under /api/v1/admin/books.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.adminList)
	router.Post("/", handler.createBook)
	router.Put("/{id}", handler.updateBook)
	router.Delete("/{id}", handler.deleteBook)

	return router
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	filter := Filter{Search: query.Get("search"), Category: query.Get("category")}

	books, err := handler.service.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, meta := pagination.Slice(books, pagination.FromRequest(request))
	respond.Paginated(writer, slice.Map(page, ListingOf), meta)
}

func (handler *Handler) listCategories(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, append([]string{AllCategories}, handler.service.Categories()...))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ListingOf(book))
}

func (handler *Handler) adminList(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.AdminList(request.Context(), request.URL.Query().Get("search"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, books)
}

/*
createBook handles POST /api/v1/admin/books.

Omitted fields take the editor defaults (category "General", the current
year, one copy).
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	input := NewBookInput(handler.now())
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, book)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input BookInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Update(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
