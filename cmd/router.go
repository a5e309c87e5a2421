package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
)

// routes collects the handlers and middlewares the router mounts.
type routes struct {
	health          http.HandlerFunc
	register        http.HandlerFunc
	login           http.HandlerFunc
	getUser         http.HandlerFunc
	me              http.HandlerFunc
	predict         http.HandlerFunc
	listPredictions http.HandlerFunc
	imageURL        http.HandlerFunc
	createFeedback  http.HandlerFunc
	listFeedback    http.HandlerFunc

	auth func(http.Handler) http.Handler
	tx   func(http.Handler) http.Handler

	corsOrigins []string
	swaggerURL  string
}

// newRouter builds the HTTP routing table.
func newRouter(rt routes) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(middlewares.CORSMiddleware(rt.corsOrigins))

	// Public routes
	r.Get("/health", rt.health)
	r.With(rt.tx).Post("/users/", rt.register)
	r.Get("/users/{user_id}", rt.getUser)
	r.Post("/login", rt.login)

	// The pipeline resolves the token itself so that authentication is its first stage.
	r.Post("/predict", rt.predict)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Get("/me", rt.me)
		r.Get("/predictions/me", rt.listPredictions)
		r.Get("/predictions/{prediction_id}/image-url", rt.imageURL)
		r.With(rt.tx).Post("/feedback/", rt.createFeedback)
		r.Get("/feedback/me", rt.listFeedback)
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(rt.swaggerURL)))

	return r
}
