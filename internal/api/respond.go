package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/safar/tg-shop/internal/auth"
	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps domain errors onto the HTTP surface. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var shortage *store.StockShortageError
	if errors.As(err, &shortage) {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "insufficient stock",
			"items": shortage.Shortages,
		})
		return
	}

	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidQuantity):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrInvalidOrderState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrUserBanned):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrInvalidInitData), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
