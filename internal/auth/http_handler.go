package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"booksstock/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type LoginReq struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /authorization/login
// @Summary Administrator login
// @Description Authenticate and receive a bearer token for the /v1 routes
// @Tags authorization
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /authorization/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Login = strings.TrimSpace(req.Login)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	token, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			httpx.JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid login or password", nil)
		case errors.Is(err, ErrForbidden):
			httpx.JSONErrorWithRequest(r, w, http.StatusForbidden, "FORBIDDEN", "Account may not administer the catalog", nil)
		default:
			h.logger.Error("login", "error", err, "request_id", httpx.RequestIDFrom(r))
			httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessWithRequest(r, w, token, nil)
}

// Logout handles POST /authorization/logout
// @Summary Revoke the current token
// @Tags authorization
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Router /authorization/logout [post]
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), httpx.BearerToken(r)); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONErrorWithRequest(r, w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
			return
		}
		h.logger.Error("logout", "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
