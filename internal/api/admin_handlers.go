package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/tg-shop/internal/store"
	"github.com/shopspring/decimal"
)

type productParamsRequest struct {
	CategoryID  int64   `json:"category_id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       string  `json:"price"`
	OldPrice    *string `json:"old_price"`
	Currency    string  `json:"currency"`
	StockCount  int     `json:"stock_count"`
	IsActive    *bool   `json:"is_active"`
}

func (req *productParamsRequest) prices() (decimal.Decimal, decimal.NullDecimal, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return decimal.Decimal{}, decimal.NullDecimal{}, err
	}

	var oldPrice decimal.NullDecimal
	if req.OldPrice != nil {
		parsed, err := decimal.NewFromString(*req.OldPrice)
		if err != nil {
			return decimal.Decimal{}, decimal.NullDecimal{}, err
		}
		oldPrice = decimal.NullDecimal{Decimal: parsed, Valid: true}
	}

	return price, oldPrice, nil
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CategoryID == 0 || req.Title == "" || req.Slug == "" {
		respondError(w, http.StatusUnprocessableEntity, "category_id, title, and slug are required")
		return
	}
	if req.StockCount < 0 {
		respondError(w, http.StatusUnprocessableEntity, "stock_count must not be negative")
		return
	}

	price, oldPrice, err := req.prices()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid price")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Shop.DefaultCurrency
	}

	product, err := store.CreateProduct(r.Context(), s.db, store.CreateProductParams{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		Price:       price,
		OldPrice:    oldPrice,
		Currency:    currency,
		StockCount:  req.StockCount,
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toProductResponse(*product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	if req.StockCount < 0 {
		respondError(w, http.StatusUnprocessableEntity, "stock_count must not be negative")
		return
	}

	price, oldPrice, err := req.prices()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid price")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := store.UpdateProduct(r.Context(), s.db, id, store.UpdateProductParams{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       price,
		OldPrice:    oldPrice,
		StockCount:  req.StockCount,
		IsActive:    isActive,
	})
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(*product))
}

// handleDeactivateProduct soft-deletes: order history keeps referencing
// the row, the storefront stops listing it.
func (s *Server) handleDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := store.DeactivateProduct(r.Context(), s.db, id); err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
