package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/tg-shop/internal/models"
)

// Catalog reads are active-only and storefront-ordered. Admin tooling
// goes straight at the tables, these feed the Mini App.

func ListSections(ctx context.Context, db *sql.DB) ([]models.Section, error) {
	query := `
		SELECT id, title, slug, description, sort_order, is_active, created_at
		FROM sections
		WHERE is_active
		ORDER BY sort_order, id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.Description, &s.SortOrder, &s.IsActive, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sections, nil
}

// ListCategories returns active categories, all of them or one
// section's worth when sectionID is non-zero.
func ListCategories(ctx context.Context, db *sql.DB, sectionID int64) ([]models.Category, error) {
	query := `
		SELECT id, section_id, title, slug, description, sort_order, is_active, created_at
		FROM categories
		WHERE is_active AND ($1 = 0 OR section_id = $1)
		ORDER BY sort_order, id`

	rows, err := db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.SectionID, &c.Title, &c.Slug, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

func ListBanners(ctx context.Context, db *sql.DB) ([]models.Banner, error) {
	query := `
		SELECT id, title, description, image, link, sort_order, is_active, created_at
		FROM banners
		WHERE is_active
		ORDER BY sort_order, id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Image, &b.Link, &b.SortOrder, &b.IsActive, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return banners, nil
}

func ListBadges(ctx context.Context, db *sql.DB) ([]models.Badge, error) {
	query := `
		SELECT id, title, color, text_color, is_active, created_at
		FROM badges
		WHERE is_active
		ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		err := rows.Scan(&b.ID, &b.Title, &b.Color, &b.TextColor, &b.IsActive, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return badges, nil
}
