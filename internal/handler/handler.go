// Package handler exposes the catalog and order services over HTTP. It maps
// query parameters and JSON bodies to domain inputs, and domain errors to
// status codes; no business rules live here.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookworm/backend/internal/domain/auth"
	"github.com/bookworm/backend/internal/domain/catalog"
	"github.com/bookworm/backend/internal/domain/order"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative cover photo paths in responses.
	// When empty, cover paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler wires the HTTP routes to the catalog and order services.
type Handler struct {
	catalog      *catalog.Service
	orders       *order.Service
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(cfg Config, catalogSvc *catalog.Service, orderSvc *order.Service) *Handler {
	return &Handler{
		catalog:      catalogSvc,
		orders:       orderSvc,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API router. Order endpoints require an API key; the
// catalog is public.
func (h *Handler) Routes(apikeys auth.Repository, pepper []byte) http.Handler {
	r := chi.NewRouter()

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.listBooks)
		r.Get("/on-sale", h.onSaleBooks)
		r.Get("/popular", h.popularBooks)
		r.Get("/recommended", h.recommendedBooks)
		r.Get("/{bookID}", h.bookDetail)
	})
	r.Get("/categories", h.listCategories)
	r.Get("/authors", h.listAuthors)

	r.Route("/orders", func(r chi.Router) {
		r.Use(RequireAPIKey(apikeys, pepper))
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{orderID}", h.orderDetail)
	})

	return r
}

// cover resolves a stored cover photo path against the configured image base
// URL.
func (h *Handler) cover(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	return h.imageBaseURL + "/" + path
}
