// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libro/internal/platform/apperr"
	requestutil "github.com/taibuivan/libro/internal/platform/request"
	"github.com/taibuivan/libro/internal/platform/respond"
)

// maxBorrowBody leaves room for the form fields around the largest proof.
const maxBorrowBody = MaxIDProofBytes + 1<<20

// # Handler Implementation

// Handler implements the HTTP layer of the borrow workflow.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a new borrow [Handler].
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes returns the reader endpoints mounted under /api/v1/borrows.
//
//   - GET  /       : The caller's active borrows with due status.
//   - POST /quote  : Price breakdown for a date range.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listOwn)
	router.Post("/quote", handler.quote)

	return router
}

// RegisterBookRoutes adds POST /{id}/borrow and POST /{id}/return to the
// books router.
func (handler *Handler) RegisterBookRoutes(router chi.Router) {
	router.Post("/{id}/borrow", handler.submit)
	router.Post("/{id}/return", handler.returnOwn)
}

// AdminRoutes returns the endpoints mounted under /api/v1/admin/borrows.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listAll)
	router.Post("/{id}/return", handler.returnBorrow)

	return router
}

type quoteRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (handler *Handler) quote(writer http.ResponseWriter, request *http.Request) {
	var input quoteRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	start, startErr := ParseDate(input.StartDate)
	end, endErr := ParseDate(input.EndDate)

	var found problems
	switch {
	case startErr != nil:
		found.add("startDate", InvalidStartDate, startErr.Error())
	case start.IsZero():
		found.add("startDate", MissingStartDate, "Start date is required")
	}
	switch {
	case endErr != nil:
		found.add("endDate", InvalidEndDate, endErr.Error())
	case end.IsZero():
		found.add("endDate", MissingEndDate, "End date is required")
	}
	if len(found) > 0 {
		respond.Error(writer, request, &ValidationError{Problems: found})
		return
	}

	respond.OK(writer, QuoteFor(start, end))
}

/*
submit handles POST /api/v1/books/{id}/borrow.

Request: multipart/form-data with StartDate, EndDate (YYYY-MM-DD) and the
IdCardImage file.

Response:
  - 201: the confirmed record
  - 400: draft problems, each with its reason
  - 409: BOOK_UNAVAILABLE or SUBMISSION_IN_FLIGHT
  - 422: rejected by the backend with its message
  - 502: backend unreachable
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	draft, err := readDraft(writer, request, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.engine.Submit(request.Context(), NewAttempt(draft))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// readDraft decodes the multipart borrow form. Malformed dates and an
// oversized body are reported as draft problems.
func readDraft(writer http.ResponseWriter, request *http.Request, bookID int64) (Draft, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBorrowBody)

	if err := request.ParseMultipartForm(maxBorrowBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Draft{}, &ValidationError{Problems: []Problem{{
				Field: "idProof", Reason: IDProofTooLarge, Message: "The ID proof must be 5 MB or smaller",
			}}}
		}
		return Draft{}, apperr.ValidationError("Expected a multipart borrow form")
	}

	draft := Draft{BookID: bookID}
	var found problems

	start, err := ParseDate(request.FormValue("StartDate"))
	if err != nil {
		found.add("startDate", InvalidStartDate, err.Error())
	}
	end, err := ParseDate(request.FormValue("EndDate"))
	if err != nil {
		found.add("endDate", InvalidEndDate, err.Error())
	}
	if len(found) > 0 {
		return Draft{}, &ValidationError{Problems: found}
	}
	draft.StartDate, draft.EndDate = start, end

	file, header, err := request.FormFile("IdCardImage")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, nil
	}
	if err != nil {
		return Draft{}, apperr.ValidationError("Could not read the ID proof")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxIDProofBytes+1))
	if err != nil {
		return Draft{}, apperr.ValidationError("Could not read the ID proof")
	}
	draft.IDProof = &IDProof{Name: header.Filename, Data: data}

	return draft, nil
}

func (handler *Handler) returnOwn(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.engine.OwnView(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.engine.ReturnOwn(request.Context(), view, bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	entries, err := handler.engine.ListOwn(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

func (handler *Handler) listAll(writer http.ResponseWriter, request *http.Request) {
	overview, err := handler.engine.ListAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, overview)
}

func (handler *Handler) returnBorrow(writer http.ResponseWriter, request *http.Request) {
	borrowID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.engine.ReturnBorrow(request.Context(), handler.engine.AdminView(), borrowID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
