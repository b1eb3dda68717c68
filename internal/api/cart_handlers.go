package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/tg-shop/internal/store"
)

func (s *Server) handleViewCart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	view, err := store.ViewCart(r.Context(), s.db, user.ID, s.cfg.Shop.DefaultCurrency)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	req := addCartItemRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.AddItem(r.Context(), s.db, user.ID, req.ProductID, req.Quantity); err != nil {
		respondStoreError(w, r, err)
		return
	}

	view, err := store.ViewCart(r.Context(), s.db, user.ID, s.cfg.Shop.DefaultCurrency)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetItemQuantity(r.Context(), s.db, user.ID, itemID, req.Quantity); err != nil {
		respondStoreError(w, r, err)
		return
	}

	view, err := store.ViewCart(r.Context(), s.db, user.ID, s.cfg.Shop.DefaultCurrency)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.RemoveItem(r.Context(), s.db, user.ID, itemID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	view, err := store.ViewCart(r.Context(), s.db, user.ID, s.cfg.Shop.DefaultCurrency)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartViewResponse(view))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := store.ClearCart(r.Context(), s.db, user.ID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "cart cleared"})
}
