package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/safar/tg-shop/internal/store"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := store.ListSections(r.Context(), s.db)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sections)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	sectionID, _ := strconv.ParseInt(r.URL.Query().Get("section_id"), 10, 64)

	categories, err := store.ListCategories(r.Context(), s.db, sectionID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// handleListProducts serves the storefront product grid. Responses are
// cached per query variant; staleness is bounded by the cache TTL.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	key := s.cache.Key("products", fmt.Sprintf("c%d:p%d:s%d", categoryID, page, pageSize))
	if cached, err := s.cache.Get(r.Context(), key); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	result, err := store.ListProducts(r.Context(), s.db, categoryID, page, pageSize)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	response := toProductPageResponse(result)
	if body, err := json.Marshal(response); err == nil {
		if err := s.cache.Set(r.Context(), key, string(body), s.cfg.Redis.CacheTTL); err != nil {
			slog.WarnContext(r.Context(), "cache products page", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := store.GetProduct(r.Context(), s.db, id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	if !product.IsActive {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(*product))
}

func (s *Server) handleListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := store.ListBanners(r.Context(), s.db)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, banners)
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := store.ListBadges(r.Context(), s.db)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, badges)
}
