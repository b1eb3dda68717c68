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

type telegramAuthRequest struct {
	InitData string `json:"initData"`
}

type authResponse struct {
	OK         bool   `json:"ok"`
	Token      string `json:"token"`
	UserID     int64  `json:"user_id"`
	TelegramID int64  `json:"telegram_id"`
}

// handleTelegramAuth exchanges verified Mini App initData for a session
// token, creating the user on first login.
func (s *Server) handleTelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req telegramAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	webAppUser, err := auth.VerifyInitData(req.InitData, s.cfg.Telegram.BotToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid telegram data")
		return
	}

	isOwner := false
	for _, id := range s.cfg.Telegram.OwnerIDs {
		if id == webAppUser.ID {
			isOwner = true
			break
		}
	}

	user, err := store.UpsertTelegramUser(r.Context(), s.db, store.TelegramProfile{
		TelegramID: webAppUser.ID,
		Username:   webAppUser.Username,
		FirstName:  webAppUser.FirstName,
		LastName:   webAppUser.LastName,
	}, isOwner)
	if err != nil {
		if errors.Is(err, database.ErrUserBanned) {
			respondError(w, http.StatusForbidden, "user is banned")
			return
		}
		respondStoreError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID, user.TelegramID)
	if err != nil {
		slog.ErrorContext(r.Context(), "issue token", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		OK:         true,
		Token:      token,
		UserID:     user.ID,
		TelegramID: user.TelegramID,
	})
}
