package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"booksstock/internal/entity"
	"booksstock/internal/httpx"
	"booksstock/internal/query"
)

type HTTPHandler struct {
	service *Service
	scope   Scope
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, scope Scope, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, scope: scope, logger: logger}
}

// Register mounts the routes of the handler's scope under prefix. The public
// scope exposes reads only.
func (h *HTTPHandler) Register(mux *http.ServeMux, prefix string, wrap func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+prefix+path, wrap(fn))
	}

	handle("GET /books", h.List)
	handle("GET /books/equals", h.Equals)
	handle("GET /books/contains", h.Contains)
	handle("GET /books/filtered", h.Filtered)
	handle("GET /books/count", h.Count)
	handle("GET /genres", h.Genres)
	handle("GET /genres/{genre}/count", h.CountGenre)

	if h.scope == ScopeAvailable {
		return
	}
	handle("GET /books/{id}", h.Get)
	handle("GET /books/available", h.ByAvailability)
	handle("GET /books/available/count", h.CountAvailable)
	handle("POST /books", h.Create)
	handle("PUT /books/{id}", h.Update)
	handle("DELETE /books/{id}", h.Delete)
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.All(r.Context(), h.scope)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondList(w, r, books, nil)
}

// Get handles GET /books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

// ByAvailability handles GET /books/available?available=
func (h *HTTPHandler) ByAvailability(w http.ResponseWriter, r *http.Request) {
	available, ok := h.availableParam(w, r)
	if !ok {
		return
	}
	books, err := h.service.ByAvailability(r.Context(), available)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondList(w, r, books, nil)
}

// Equals handles GET /books/equals?condition=
func (h *HTTPHandler) Equals(w http.ResponseWriter, r *http.Request) {
	term, ok := h.conditionParam(w, r)
	if !ok {
		return
	}
	books, err := h.service.Equals(r.Context(), h.scope, term)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondList(w, r, books, nil)
}

// Contains handles GET /books/contains?condition=
func (h *HTTPHandler) Contains(w http.ResponseWriter, r *http.Request) {
	term, ok := h.conditionParam(w, r)
	if !ok {
		return
	}
	books, err := h.service.Contains(r.Context(), h.scope, term)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.respondList(w, r, books, nil)
}

// Filtered handles GET /books/filtered
func (h *HTTPHandler) Filtered(w http.ResponseWriter, r *http.Request) {
	c, details := parseCriteria(r)
	if len(details) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filter", details)
		return
	}
	if err := c.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	if pagingRequested(r) {
		books, err := h.service.All(r.Context(), h.scope)
		if err != nil {
			h.internalError(w, r, err)
			return
		}
		h.respondList(w, r, books, &c)
		return
	}

	books, err := h.service.Filtered(r.Context(), h.scope, c)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondList(w, r, books, nil)
}

// Genres handles GET /genres
func (h *HTTPHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.Genres(r.Context(), h.scope)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if len(genres) == 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "No genres found", nil)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, genres, map[string]any{"total": len(genres)})
}

// Count handles GET /books/count
func (h *HTTPHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Count(r.Context(), h.scope)
	h.respondCount(w, r, n, err)
}

// CountAvailable handles GET /books/available/count?available=
func (h *HTTPHandler) CountAvailable(w http.ResponseWriter, r *http.Request) {
	available, ok := h.availableParam(w, r)
	if !ok {
		return
	}
	n, err := h.service.CountAvailable(r.Context(), available)
	h.respondCount(w, r, n, err)
}

// CountGenre handles GET /genres/{genre}/count
func (h *HTTPHandler) CountGenre(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.CountGenre(r.Context(), h.scope, r.PathValue("genre"))
	h.respondCount(w, r, n, err)
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in NewBook
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if details := httpx.ValidateStruct(in); details != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book", details)
		return
	}

	b, err := h.service.Add(r.Context(), in)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.logger.Info("book added", "id", b.ID, "user_id", httpx.UserIDFrom(r))
	w.Header().Set("Location", r.URL.Path+"/"+b.ID)
	httpx.JSONSuccessCreatedWithRequest(r, w, b)
}

// Update handles PUT /books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var ch Changes
	if err := httpx.DecodeJSON(r, &ch); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if details := httpx.ValidateStruct(ch); details != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book", details)
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("id"), ch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.logger.Info("book updated", "id", b.ID, "user_id", httpx.UserIDFrom(r))
	httpx.JSONSuccessWithRequest(r, w, b, nil)
}

// Delete handles DELETE /books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.logger.Info("book deleted", "id", id, "user_id", httpx.UserIDFrom(r))
	httpx.JSONSuccessNoContent(w)
}

// respondList pages books when the request asks for it and answers 404 for
// an empty result.
func (h *HTTPHandler) respondList(w http.ResponseWriter, r *http.Request, books []entity.Book, c *query.Criteria) {
	if !pagingRequested(r) {
		if len(books) == 0 {
			httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "No books found", nil)
			return
		}
		httpx.JSONSuccessWithRequest(r, w, books, map[string]any{"total": len(books)})
		return
	}

	req, details := parsePageRequest(r)
	if len(details) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid page request", details)
		return
	}
	res, err := h.service.Paginate(h.scope, books, c, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if len(res.Items) == 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "No books found", nil)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, res.Items, map[string]any{
		"page":        res.Page.Skip/res.Page.Size + 1,
		"page_size":   res.Page.Size,
		"total":       res.Total,
		"total_pages": res.Page.TotalPages,
	})
}

func (h *HTTPHandler) respondCount(w http.ResponseWriter, r *http.Request, n int, err error) {
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	httpx.JSONSuccessWithRequest(r, w, map[string]int{"count": n}, nil)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrInvalidID):
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "INVALID_ID", "Book id must be 24 characters long", nil)
	case errors.Is(err, query.ErrInvalidCriteria):
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
	default:
		h.internalError(w, r, err)
	}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("book request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", httpx.RequestIDFrom(r),
		"error", err,
	)
	httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

func (h *HTTPHandler) conditionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	term := strings.TrimSpace(r.URL.Query().Get("condition"))
	if term == "" {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "condition is required",
			[]httpx.ErrorDetail{{Field: "condition", Message: "condition is required"}})
		return "", false
	}
	return term, true
}

func (h *HTTPHandler) availableParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	raw := r.URL.Query().Get("available")
	if raw == "" {
		return true, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "available must be true or false",
			[]httpx.ErrorDetail{{Field: "available", Message: "available must be true or false"}})
		return false, false
	}
	return v, true
}

func pagingRequested(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("page_size")
}

func parsePageRequest(r *http.Request) (query.PageRequest, []httpx.ErrorDetail) {
	q := r.URL.Query()
	req := query.DefaultPageRequest()
	var details []httpx.ErrorDetail

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "page", Message: "page must be an integer"})
		}
		req.CurrentPage = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "page_size", Message: "page_size must be an integer"})
		}
		req.PerPage = n
	}
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		req.Order = query.Descending
	default:
		details = append(details, httpx.ErrorDetail{Field: "order", Message: "order must be asc or desc"})
	}
	return req, details
}

func parseCriteria(r *http.Request) (query.Criteria, []httpx.ErrorDetail) {
	q := r.URL.Query()
	c := query.Criteria{
		Title:       q.Get("title"),
		Author:      q.Get("author"),
		Description: q.Get("annotation"),
		Language:    q.Get("language"),
	}
	var details []httpx.ErrorDetail

	for _, raw := range q["genres"] {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				c.Genres = append(c.Genres, g)
			}
		}
	}
	if v := q.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "available", Message: "available must be true or false"})
		} else {
			c.Available = &b
		}
	}
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"min_price", &c.MinPrice}, {"max_price", &c.MaxPrice}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: p.name, Message: p.name + " must be a number"})
			continue
		}
		*p.dst = &f
	}
	return c, details
}
