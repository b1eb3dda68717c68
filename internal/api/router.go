package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safar/tg-shop/internal/auth"
	"github.com/safar/tg-shop/internal/cache"
	"github.com/safar/tg-shop/internal/config"
)

type Server struct {
	db     *sql.DB
	cfg    *config.Config
	tokens *auth.TokenIssuer
	cache  cache.Cache
}

func NewServer(db *sql.DB, cfg *config.Config, tokens *auth.TokenIssuer, c cache.Cache) *Server {
	return &Server{db: db, cfg: cfg, tokens: tokens, cache: c}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/telegram", s.handleTelegramAuth)

	// Public catalog.
	r.Get("/sections", s.handleListSections)
	r.Get("/categories", s.handleListCategories)
	r.Get("/products", s.handleListProducts)
	r.Get("/products/{id}", s.handleGetProduct)
	r.Get("/banners", s.handleListBanners)
	r.Get("/badges", s.handleListBadges)

	// Authenticated cart and orders.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/cart", s.handleViewCart)
		r.Post("/cart/items", s.handleAddCartItem)
		r.Patch("/cart/items/{id}", s.handleUpdateCartItem)
		r.Delete("/cart/items/{id}", s.handleRemoveCartItem)
		r.Delete("/cart", s.handleClearCart)

		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders", s.handleListOrders)
		r.Get("/orders/{id}", s.handleGetOrder)
		r.Post("/orders/{id}/cancel", s.handleCancelOrder)
	})

	// Admin catalog management.
	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.requireAdmin)

		r.Post("/products", s.handleCreateProduct)
		r.Patch("/products/{id}", s.handleUpdateProduct)
		r.Delete("/products/{id}", s.handleDeactivateProduct)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
