package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/models"
)

// TelegramProfile is what initData verification yields about the caller.
type TelegramProfile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// UpsertTelegramUser finds or creates the user for a telegram id and
// refreshes the profile fields on every login. isAdmin only ever flips
// the flag on, so demoting an owner requires a manual update.
func UpsertTelegramUser(ctx context.Context, db *sql.DB, profile TelegramProfile, isAdmin bool) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    is_admin = users.is_admin OR EXCLUDED.is_admin,
		    updated_at = NOW()
		RETURNING id, telegram_id, username, first_name, last_name, is_banned, is_admin, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		profile.TelegramID, profile.Username, profile.FirstName, profile.LastName, isAdmin).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsBanned,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if user.IsBanned {
		return nil, database.ErrUserBanned
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, telegram_id, username, first_name, last_name, is_banned, is_admin, created_at, updated_at
		FROM users
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsBanned,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func SetUserBanned(ctx context.Context, db *sql.DB, id int64, banned bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET is_banned = $1, updated_at = NOW() WHERE id = $2`,
		banned, id)
	if err != nil {
		return fmt.Errorf("set user banned: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}
