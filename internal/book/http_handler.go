package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	log     *zap.Logger
}

func NewHTTPHandler(service *Service, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, log: log}
}

type bookRequest struct {
	Title  *string `json:"title" validate:"required"`
	Author *string `json:"author" validate:"required"`
	Year   *int    `json:"year" validate:"required,gte=-2147483648,lte=2147483647"`
}

func (req bookRequest) input() Input {
	return Input{Title: *req.Title, Author: *req.Author, Year: *req.Year}
}

type listParams struct {
	SortBy string `form:"sort_by" validate:"oneof=title author year"`
	Order  string `form:"order" validate:"oneof=asc desc"`
	Skip   int    `form:"skip" validate:"gte=0"`
	Limit  int    `form:"limit" validate:"gte=1,lte=100"`
}

type mutationResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

// List handles GET /books
// @Summary List books
// @Description Filter by year, title or author, sort and paginate
// @Tags books
// @Produce json
// @Param year query int false "Exact publication year"
// @Param title query string false "Case-insensitive title substring"
// @Param author query string false "Case-insensitive author substring"
// @Param sort_by query string false "title, author or year" default(title)
// @Param order query string false "asc or desc" default(asc)
// @Param skip query int false "Rows to skip" default(0)
// @Param limit query int false "Page size, 1-100" default(10)
// @Success 200 {object} Page
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q, details := ParseQuery(r.URL.Query())
	if len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// ParseQuery turns listing query parameters into a Query. Details are
// returned for every parameter that is malformed or out of range.
func ParseQuery(values url.Values) (Query, []httpx.ErrorDetail) {
	q := DefaultQuery()
	var details []httpx.ErrorDetail

	intParam := func(name string, dst *int) bool {
		if !values.Has(name) {
			return false
		}
		v, err := strconv.Atoi(strings.TrimSpace(values.Get(name)))
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: name, Message: name + " must be an integer"})
			return false
		}
		*dst = v
		return true
	}

	var year int
	if intParam("year", &year) {
		if validYear(year) {
			q.Year = &year
		} else {
			details = append(details, httpx.ErrorDetail{Field: "year", Message: fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear)})
		}
	}
	q.Title = values.Get("title")
	q.Author = values.Get("author")

	params := listParams{SortBy: string(q.SortBy), Order: string(q.Order), Skip: q.Skip, Limit: q.Limit}
	// A parameter that is present but empty is validated, not defaulted.
	if values.Has("sort_by") {
		params.SortBy = values.Get("sort_by")
	}
	if values.Has("order") {
		params.Order = values.Get("order")
	}
	intParam("skip", &params.Skip)
	intParam("limit", &params.Limit)

	details = append(details, httpx.ValidateStruct(params)...)
	if len(details) > 0 {
		return Query{}, details
	}

	q.SortBy = SortField(params.SortBy)
	q.Order = SortOrder(params.Order)
	q.Skip = params.Skip
	q.Limit = params.Limit
	return q, nil
}

// Get handles GET /books/{id}
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookRequest true "Book"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := httpx.UsernameFrom(r)
	if username == "" {
		httpx.Unauthorized(w, r, "Not authenticated")
		return
	}

	req, ok := h.decodeBook(w, r)
	if !ok {
		return
	}

	b, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse{
		Message: "Book added successfully by " + username,
		Book:    b,
	})
}

// Replace handles PUT /books/{id}
// @Summary Replace a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body bookRequest true "Book"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeBook(w, r)
	if !ok {
		return
	}

	b, err := h.service.Replace(r.Context(), id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse{Message: "Book updated successfully", Book: b})
}

// Patch handles PATCH /books/{id}
// @Summary Partially update a book
// @Description Only supplied fields are written; zero values such as year 0 are applied.
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} mutationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [patch]
func (h *HTTPHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var p Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httpx.BodyError(w, r, err, "Invalid request body")
		return
	}

	b, err := h.service.Patch(r.Context(), id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutationResponse{Message: "Book updated successfully", Book: b})
}

// Delete handles DELETE /books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} httpx.MessageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONMessage(w, "Book deleted successfully")
}

func (h *HTTPHandler) decodeBook(w http.ResponseWriter, r *http.Request) (bookRequest, bool) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BodyError(w, r, err, "Invalid request body")
		return req, false
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return req, false
	}
	return req, true
}

// pathID parses {id}. Anything that is not a positive integer cannot name
// a book, so it is answered as not found.
func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httpx.NotFound(w, r, "Book not found")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidInput):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		h.log.Error("book request failed",
			zap.String("request_id", httpx.RequestIDFrom(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.InternalError(w, r)
	}
}
