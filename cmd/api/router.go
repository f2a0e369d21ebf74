package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"libraryapi/internal/auth"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/user"
)

func newRouter(cfg config.Config, log *zap.Logger, st *store) http.Handler {
	bookService := book.NewService(st.books)
	userService := user.NewService(st.users)
	authService := auth.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, userService)

	bookHandler := book.NewHTTPHandler(bookService, log)
	authHandler := auth.NewHTTPHandler(authService, log)
	requireAuth := httpx.AuthMiddleware(authService)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := st.ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.Handler())

	router.HandleFunc("GET /books", bookHandler.List)
	router.Handle("POST /books", requireAuth(http.HandlerFunc(bookHandler.Create)))
	router.HandleFunc("GET /books/{id}", bookHandler.Get)
	router.HandleFunc("PUT /books/{id}", bookHandler.Replace)
	router.HandleFunc("PATCH /books/{id}", bookHandler.Patch)
	router.HandleFunc("DELETE /books/{id}", bookHandler.Delete)

	router.HandleFunc("POST /register", authHandler.Register)
	router.HandleFunc("POST /login", authHandler.Login)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(log),
		httpx.AccessLogMiddleware(log),
		httpx.MetricsMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
