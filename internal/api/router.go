package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterConfig carries the transport settings of the router
type RouterConfig struct {
	MaxBodyBytes int64
	Logger       zerolog.Logger
	// AllowedOrigins enables CORS for these origins; "*" allows any.
	// Empty disables CORS.
	AllowedOrigins []string
}

func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.CSRFHeader, middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)
		r.Use(middleware.CSRF(h.csrf))

		// Pages
		r.Get("/", h.Index)
		r.Get("/cart", h.CartPage)
		r.Get("/checkout", h.CheckoutPage)
		r.Post("/checkout", h.SubmitCheckout)

		// JSON API
		r.Route("/api", func(r chi.Router) {
			r.Get("/products", h.GetProducts)
			r.Get("/categories", h.GetCategories)
			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.UpdateCart)
		})
	})

	return r
}
