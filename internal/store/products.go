package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, category_id, title, slug, description, image,
	price, old_price, currency, stock_count, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Image,
		&p.Price,
		&p.OldPrice,
		&p.Currency,
		&p.StockCount,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

type CreateProductParams struct {
	CategoryID  int64
	Title       string
	Slug        string
	Description string
	Image       string
	Price       decimal.Decimal
	OldPrice    decimal.NullDecimal
	Currency    string
	StockCount  int
}

func CreateProduct(ctx context.Context, db *sql.DB, params CreateProductParams) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (category_id, title, slug, description, image, price, old_price,
		                      currency, stock_count, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW(), NOW())
		RETURNING ` + productColumns

	row := db.QueryRowContext(ctx, query,
		params.CategoryID, params.Title, params.Slug, params.Description, params.Image,
		params.Price, params.OldPrice, params.Currency, params.StockCount)
	if err := scanProduct(row, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

type UpdateProductParams struct {
	Title       string
	Description string
	Image       string
	Price       decimal.Decimal
	OldPrice    decimal.NullDecimal
	StockCount  int
	IsActive    bool
}

func UpdateProduct(ctx context.Context, db *sql.DB, id int64, params UpdateProductParams) (*models.Product, error) {
	product := &models.Product{}

	query := `
		UPDATE products
		SET title = $1, description = $2, image = $3, price = $4, old_price = $5,
		    stock_count = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + productColumns

	row := db.QueryRowContext(ctx, query,
		params.Title, params.Description, params.Image, params.Price, params.OldPrice,
		params.StockCount, params.IsActive, id)
	if err := scanProduct(row, product); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeactivateProduct is the admin "delete". Rows are never removed while
// order history may reference them; the catalog just stops showing them.
func DeactivateProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	if err := scanProduct(db.QueryRowContext(ctx, query, id), product); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// lockProduct reads a product row FOR UPDATE inside tx. Checkout and
// cancel both go through here so stock read-then-write is serialized
// per row.
func lockProduct(ctx context.Context, tx *sql.Tx, productID int64) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	if err := scanProduct(tx.QueryRowContext(ctx, query, productID), product); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("lock product %d: %w", productID, err)
	}

	return product, nil
}

// decrementStock reduces stock inside tx. The stock_count >= $1 guard
// backs up the row lock: a decrement that would go negative affects no
// rows and surfaces as ErrInsufficientStock.
func decrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock_count = stock_count - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock_count >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}

// restoreStock puts cancelled quantities back. A missing product row is
// a no-op: the product was deleted after the order, there is nothing to
// restock.
func restoreStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock_count = stock_count + $1,
		     updated_at = NOW()
		 WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	return nil
}

// ListProducts returns active products, optionally scoped to a
// category, ordered for the storefront.
func ListProducts(ctx context.Context, db *sql.DB, categoryID int64, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE is_active AND ($1 = 0 OR category_id = $1)`,
		categoryID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active AND ($1 = 0 OR category_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, categoryID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, page, pageSize), nil
}
