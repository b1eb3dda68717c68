package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/models"
	"github.com/shopspring/decimal"
)

// StockShortage names one cart line that cannot be fulfilled.
// Available is 0 when the product went inactive.
type StockShortage struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockShortageError reports every failing line of a checkout attempt.
// It unwraps to ErrInsufficientStock for errors.Is checks.
type StockShortageError struct {
	Shortages []StockShortage
}

func (e *StockShortageError) Error() string {
	titles := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		titles[i] = fmt.Sprintf("%q (requested %d, available %d)", s.Title, s.Requested, s.Available)
	}
	return "insufficient stock: " + strings.Join(titles, ", ")
}

func (e *StockShortageError) Unwrap() error {
	return database.ErrInsufficientStock
}

// CreateOrder turns the user's cart into a pending order: every product
// row is locked and checked, stock is decremented, snapshot order items
// are written, and the cart is emptied, all in one serializable
// transaction. Any failing line aborts the whole attempt with no writes.
//
// The cart row is locked first so two checkouts of the same cart
// serialize; the loser re-reads an empty cart and gets ErrEmptyCart.
// Product rows are locked in ascending id order to keep concurrent
// checkouts deadlock-free.
func CreateOrder(ctx context.Context, db *sql.DB, userID int64, currency string) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var cartID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
			userID).Scan(&cartID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrEmptyCart
			}
			return fmt.Errorf("lock cart: %w", err)
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT product_id, quantity
			 FROM cart_items
			 WHERE cart_id = $1
			 ORDER BY product_id`,
			cartID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}

		type cartLine struct {
			productID int64
			quantity  int
		}
		var lines []cartLine
		for rows.Next() {
			var l cartLine
			if err := rows.Scan(&l.productID, &l.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("scan cart item: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		if len(lines) == 0 {
			return database.ErrEmptyCart
		}

		var shortages []StockShortage
		products := make(map[int64]*models.Product, len(lines))
		totalAmount := decimal.Zero

		for _, line := range lines {
			product, err := lockProduct(ctx, tx, line.productID)
			if err != nil {
				return err
			}

			switch {
			case !product.IsActive:
				shortages = append(shortages, StockShortage{
					ProductID: product.ID,
					Title:     product.Title,
					Requested: line.quantity,
					Available: 0,
				})
			case product.StockCount < line.quantity:
				shortages = append(shortages, StockShortage{
					ProductID: product.ID,
					Title:     product.Title,
					Requested: line.quantity,
					Available: product.StockCount,
				})
			default:
				products[product.ID] = product
				totalAmount = totalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
			}
		}

		if len(shortages) > 0 {
			return &StockShortageError{Shortages: shortages}
		}

		order = &models.Order{
			UserID:      userID,
			Status:      models.OrderStatusPending,
			TotalAmount: totalAmount,
			Currency:    currency,
		}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, status, total_amount, currency, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())
			 RETURNING id, created_at, updated_at`,
			userID, order.Status, totalAmount, currency).Scan(
			&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range lines {
			product := products[line.productID]
			item := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    &product.ID,
				ProductTitle: product.Title,
				Quantity:     line.quantity,
				Price:        product.Price,
			}

			err := tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_title, quantity, price, created_at)
				 VALUES ($1, $2, $3, $4, $5, NOW())
				 RETURNING id, created_at`,
				order.ID, product.ID, product.Title, line.quantity, product.Price).Scan(
				&item.ID, &item.CreatedAt)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}

			order.Items = append(order.Items, item)
		}

		for _, line := range lines {
			if err := decrementStock(ctx, tx, line.productID, line.quantity); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// CancelOrder moves a pending order to cancelled and puts the ordered
// quantities back on stock, atomically. Items whose product row was
// deleted are skipped: there is nothing left to restock.
func CancelOrder(ctx context.Context, db *sql.DB, userID, orderID int64) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		locked, err := lockOrder(ctx, tx, orderID, userID)
		if err != nil {
			return err
		}

		if locked.Status != models.OrderStatusPending {
			return database.ErrInvalidOrderState
		}

		if err := cancelLocked(ctx, tx, locked); err != nil {
			return err
		}

		order = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrderStatus applies a status transition on behalf of the
// payment collaborator or the bot. Cancelling through this path
// restocks exactly like CancelOrder.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID int64, status string) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		locked, err := lockOrder(ctx, tx, orderID, 0)
		if err != nil {
			return err
		}

		if !models.ValidOrderTransition(locked.Status, status) {
			return database.ErrInvalidOrderState
		}

		if status == models.OrderStatusCancelled {
			if err := cancelLocked(ctx, tx, locked); err != nil {
				return err
			}
			order = locked
			return nil
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
			 RETURNING updated_at`,
			status, orderID).Scan(&locked.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		locked.Status = status
		order = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// lockOrder reads an order and its items FOR UPDATE of the order row.
// userID 0 skips the ownership check (internal callers).
func lockOrder(ctx context.Context, tx *sql.Tx, orderID, userID int64) (*models.Order, error) {
	order := &models.Order{}

	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		 FROM orders
		 WHERE id = $1 AND ($2 = 0 OR user_id = $2)
		 FOR UPDATE`,
		orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	items, err := loadOrderItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// cancelLocked flips the status and restocks. The order row must
// already be locked and pending-checked by the caller.
func cancelLocked(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	err := tx.QueryRowContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
		 RETURNING updated_at`,
		models.OrderStatusCancelled, order.ID).Scan(&order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	order.Status = models.OrderStatusCancelled

	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		if err := restoreStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadOrderItems(ctx context.Context, q querier, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_title, quantity, price, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY product_id NULLS LAST, id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductTitle,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func GetOrder(ctx context.Context, db *sql.DB, userID, orderID int64) (*models.Order, error) {
	order := &models.Order{}

	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		 FROM orders
		 WHERE id = $1 AND user_id = $2`,
		orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := loadOrderItems(ctx, db, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListOrders returns the user's orders, newest first, items included.
func ListOrders(ctx context.Context, db *sql.DB, userID int64, limit, offset int) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var orderIDs []int64
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.Currency,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	itemRows, err := db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_title, quantity, price, created_at
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer itemRows.Close()

	itemsByOrder := make(map[int64][]models.OrderItem, len(orders))
	for itemRows.Next() {
		var item models.OrderItem
		err := itemRows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductTitle,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}
