// Package handler exposes the menu cart over a JSON HTTP API.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/menukart/internal/domain/money"
	"github.com/xenking/menukart/internal/shop"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths. When empty, image
	// paths are returned as stored in the catalog.
	ImageBaseURL string
	// Money formats the price labels sent alongside raw amounts.
	Money money.Formatter
	// BusinessName is reported by GET /api/info.
	BusinessName string
}

// Handler serves the cart API on top of a shop.Service.
//
// All requests share the one cart and selection session the Service owns,
// so a Handler serves a single customer (a kiosk or one table's device).
// It has no per-client carts.
type Handler struct {
	shop         *shop.Service
	money        money.Formatter
	imageBaseURL string
	businessName string
}

// New constructs a Handler.
func New(cfg Config, svc *shop.Service) *Handler {
	return &Handler{
		shop:         svc,
		money:        cfg.Money,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		businessName: cfg.BusinessName,
	}
}

// Routes mounts the API under /api on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", h.info)

		r.Get("/categories", h.listCategories)
		r.Put("/category", h.selectCategory)
		r.Get("/products", h.listProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/items", h.addItem)
			r.Delete("/items", h.removeItem)
			r.Post("/quantity", h.changeQuantity)
			r.Put("/quantity", h.setQuantity)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Post("/variant", h.selectVariant)
			r.Post("/addons", h.setAddOn)
			r.Post("/counters", h.adjustCounter)
			r.Post("/confirm", h.confirm)
			r.Post("/cancel", h.cancel)
		})

		r.Post("/checkout", h.checkout)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Router returns a new chi router with the API mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func (h *Handler) imageURL(image string) string {
	if image == "" || h.imageBaseURL == "" || strings.Contains(image, "://") {
		return image
	}
	return h.imageBaseURL + "/" + strings.TrimLeft(image, "/")
}
