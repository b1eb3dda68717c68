package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/models"
	"github.com/shopspring/decimal"
)

// GetOrCreateCart returns the user's cart, creating an empty one on
// first access. Safe to call concurrently: the user_id unique
// constraint makes the insert race collapse into a re-read.
func GetOrCreateCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart, err := getCart(ctx, db, userID)
	if err == nil {
		return cart, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO carts (user_id, created_at, updated_at)
		 VALUES ($1, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart, err = getCart(ctx, db, userID)
	if err != nil {
		return nil, fmt.Errorf("get created cart: %w", err)
	}
	return cart, nil
}

func getCart(ctx context.Context, db *sql.DB, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity units of a product into the user's cart. A
// repeat add merges into the existing line. Stock is not checked here;
// cart membership is non-binding and availability is enforced at
// checkout.
func AddItem(ctx context.Context, db *sql.DB, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return database.ErrInvalidQuantity
	}

	product, err := GetProduct(ctx, db, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return database.ErrProductNotFound
	}

	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (cart_id, product_id) DO UPDATE
		 SET quantity = cart_items.quantity + EXCLUDED.quantity,
		     updated_at = NOW()`,
		cart.ID, productID, quantity)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	return nil
}

// SetItemQuantity sets a line's quantity. Zero removes the line. The
// item must belong to the caller's cart.
func SetItemQuantity(ctx context.Context, db *sql.DB, userID, itemID int64, quantity int) error {
	if quantity < 0 {
		return database.ErrInvalidQuantity
	}
	if quantity == 0 {
		return RemoveItem(ctx, db, userID, itemID)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE cart_items
		 SET quantity = $1, updated_at = NOW()
		 WHERE id = $2
		   AND cart_id = (SELECT id FROM carts WHERE user_id = $3)`,
		quantity, itemID, userID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

func RemoveItem(ctx context.Context, db *sql.DB, userID, itemID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_items
		 WHERE id = $1
		   AND cart_id = (SELECT id FROM carts WHERE user_id = $2)`,
		itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

// ClearCart drops every line; the cart row itself stays.
func ClearCart(ctx context.Context, db *sql.DB, userID int64) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM cart_items
		 WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)`,
		userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

type cartRow struct {
	line     models.CartLine
	active   bool
	currency string
}

// ViewCart prices the cart against the current catalog. Lines whose
// product went inactive are flagged and excluded from the totals.
func ViewCart(ctx context.Context, db *sql.DB, userID int64, defaultCurrency string) (*models.CartView, error) {
	cart, err := GetOrCreateCart(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ci.id, ci.product_id, ci.quantity,
		       p.title, p.image, p.price, p.old_price, p.currency, p.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := db.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	var cartRows []cartRow
	for rows.Next() {
		var r cartRow
		err := rows.Scan(
			&r.line.ItemID,
			&r.line.ProductID,
			&r.line.Quantity,
			&r.line.ProductTitle,
			&r.line.ProductImage,
			&r.line.Price,
			&r.line.OldPrice,
			&r.currency,
			&r.active,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cartRows = append(cartRows, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return buildCartView(cart.ID, cartRows, defaultCurrency), nil
}

func buildCartView(cartID int64, rows []cartRow, defaultCurrency string) *models.CartView {
	view := &models.CartView{
		CartID:      cartID,
		Items:       []models.CartLine{},
		TotalAmount: decimal.Zero,
		Currency:    defaultCurrency,
	}

	for _, r := range rows {
		line := r.line
		if !r.active {
			line.Unavailable = true
			line.Subtotal = decimal.Zero
			view.Items = append(view.Items, line)
			continue
		}

		line.Subtotal = line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.TotalItems += line.Quantity
		view.TotalAmount = view.TotalAmount.Add(line.Subtotal)
		view.Currency = r.currency
		view.Items = append(view.Items, line)
	}

	return view
}
