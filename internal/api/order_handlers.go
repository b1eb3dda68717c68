package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/metrics"
	"github.com/safar/tg-shop/internal/store"
)

// handleCreateOrder is checkout: the cart becomes a pending order or
// nothing happens at all.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	order, err := store.CreateOrder(r.Context(), s.db, user.ID, s.cfg.Shop.DefaultCurrency)
	if err != nil {
		if errors.Is(err, database.ErrInsufficientStock) {
			metrics.CheckoutStockConflicts.Inc()
		}
		respondStoreError(w, r, err)
		return
	}

	metrics.OrdersCreated.Inc()
	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	orders, err := store.ListOrders(r.Context(), s.db, user.ID, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	responses := make([]orderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := store.GetOrder(r.Context(), s.db, user.ID, orderID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := store.CancelOrder(r.Context(), s.db, user.ID, orderID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.OrdersCancelled.Inc()
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}
