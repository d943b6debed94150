package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"booksstock/internal/auth"
	"booksstock/internal/book"
	"booksstock/internal/entity"
	"booksstock/internal/httpx"
	"booksstock/internal/user"
)

const maxBodyBytes = 1 << 20

type routerDeps struct {
	books        *book.Service
	users        *user.Service
	auth         *auth.Service
	apiKey       string
	limiter      *httpx.RateLimitMiddleware
	ready        func(context.Context) error
	adminOrigins []string
	userOrigins  []string
	logger       *slog.Logger
}

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.ready(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	userHandler := user.NewHTTPHandler(d.users, d.logger)
	authHandler := auth.NewHTTPHandler(d.auth, d.logger)
	authenticated := httpx.AuthMiddleware(d.auth.ParseToken)

	router.HandleFunc("POST /authorization/register", userHandler.RegisterUser)
	router.HandleFunc("POST /authorization/login", authHandler.Login)
	router.Handle("POST /authorization/logout", authenticated(http.HandlerFunc(authHandler.Logout)))
	router.Handle("GET /authorization/me", authenticated(http.HandlerFunc(userHandler.GetCurrentUser)))

	admin := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.APIKeyMiddleware(d.apiKey),
			authenticated,
			httpx.RequireRole(entity.RoleAdmin),
		)
	}
	book.NewHTTPHandler(d.books, book.ScopeAll, d.logger).Register(router, "/v1", admin)
	book.NewHTTPHandler(d.books, book.ScopeAvailable, d.logger).Register(router, "/v2", d.limiter.Middleware)

	return httpx.Chain(router,
		httpx.RecoveryMiddleware(d.logger),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.logger),
		httpx.SecurityHeadersMiddleware(false),
		httpx.CORSMiddleware(
			httpx.CORSPolicy{
				Origins: d.adminOrigins,
				Methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			},
			httpx.CORSPolicy{
				Origins: d.userOrigins,
				Methods: []string{http.MethodGet, http.MethodOptions},
			},
		),
		httpx.RequestSizeLimitMiddleware(maxBodyBytes),
	)
}
