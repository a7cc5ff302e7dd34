package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_pharmacy/internal/checkout"
	"github.com/fjod/go_pharmacy/internal/logger"
	"github.com/fjod/go_pharmacy/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Catalog        CatalogService
	Sessions       *session.Store
	Checkout       *checkout.Sequencer
	Log            *logger.Logger
	RequestTimeout time.Duration
	MaxBodySize    int64
	// OrderService, when set, is mounted at /api/v1/orders so this process can act as the
	// order service for other storefronts.
	OrderService http.Handler
	// StreamsDone ends every open event stream when closed, so that a graceful shutdown
	// does not wait on them.
	StreamsDone <-chan struct{}
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = logger.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	catalogHandler := NewCatalogHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.Catalog)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout)
	eventsHandler := NewEventsHandler(cfg.Log, cfg.StreamsDone)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Log.With("component", "http")))
	r.Use(middleware.Recoverer)
	r.Use(MaxBodySize(cfg.MaxBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.OrderService != nil {
			r.With(middleware.Timeout(cfg.RequestTimeout)).Method(http.MethodPost, "/orders", cfg.OrderService)
		}

		// The event stream lives as long as the client stays connected.
		r.With(SessionMiddleware(cfg.Sessions)).Get("/events", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
			r.Use(middleware.Compress(5))

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{product_id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/addresses", checkoutHandler.ListAddresses)

			r.Group(func(r chi.Router) {
				r.Use(SessionMiddleware(cfg.Sessions))

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", cartHandler.GetCart)
					r.Delete("/", cartHandler.ClearCart)
					r.Post("/items", cartHandler.AddItem)
					r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
					r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				})

				r.Route("/checkout", func(r chi.Router) {
					r.Post("/", checkoutHandler.Enter)
					r.Get("/", checkoutHandler.View)
					r.Delete("/", checkoutHandler.Leave)
					r.Put("/address", checkoutHandler.SelectAddress)
					r.Post("/continue", checkoutHandler.ContinueToPayment)
					r.Post("/back", checkoutHandler.BackToAddress)
					r.Put("/payment", checkoutHandler.SelectPayment)
					r.Post("/order", checkoutHandler.PlaceOrder)
					r.Post("/acknowledge", checkoutHandler.Acknowledge)
				})
			})
		})
	})

	return r
}
