package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/safar/tg-shop/internal/database"
	"github.com/safar/tg-shop/internal/store"
	"github.com/shopspring/decimal"
)

func TestGetOrCreateCartIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3001)

	first, err := store.GetOrCreateCart(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get or create cart: %v", err)
	}
	second, err := store.GetOrCreateCart(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("Get or create cart again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected same cart %d, got %d", first.ID, second.ID)
	}
}

func TestAddItemMergesLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3002)
	categoryID := createTestCategory(t, db, "merge")
	product := createTestProduct(t, db, categoryID, "Mergeable", 150, 20)

	if err := store.AddItem(ctx, db, user.ID, product.ID, 2); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, product.ID, 3); err != nil {
		t.Fatalf("Add item again: %v", err)
	}

	view, err := store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("Expected 1 merged line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", view.Items[0].Quantity)
	}
	if !view.Items[0].Subtotal.Equal(decimal.NewFromInt(750)) {
		t.Errorf("Expected subtotal 750, got %s", view.Items[0].Subtotal)
	}
	if view.TotalItems != 5 {
		t.Errorf("Expected total items 5, got %d", view.TotalItems)
	}
	if !view.TotalAmount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("Expected total amount 750, got %s", view.TotalAmount)
	}
}

func TestAddItemValidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3003)
	categoryID := createTestCategory(t, db, "validation")
	product := createTestProduct(t, db, categoryID, "Strict", 100, 5)

	if err := store.AddItem(ctx, db, user.ID, product.ID, 0); !errors.Is(err, database.ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for zero quantity, got %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, product.ID, -1); !errors.Is(err, database.ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity for negative quantity, got %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, 99999, 1); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound for missing product, got %v", err)
	}

	if err := store.DeactivateProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Deactivate product: %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, product.ID, 1); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound for inactive product, got %v", err)
	}
}

func TestSetItemQuantity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3004)
	stranger := createTestUser(t, db, 3005)
	categoryID := createTestCategory(t, db, "quantity")
	product := createTestProduct(t, db, categoryID, "Adjustable", 100, 20)

	if err := store.AddItem(ctx, db, user.ID, product.ID, 2); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	view, err := store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	itemID := view.Items[0].ItemID

	if err := store.SetItemQuantity(ctx, db, user.ID, itemID, 7); err != nil {
		t.Fatalf("Set quantity: %v", err)
	}
	view, err = store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	if view.Items[0].Quantity != 7 {
		t.Errorf("Expected quantity 7, got %d", view.Items[0].Quantity)
	}

	if err := store.SetItemQuantity(ctx, db, user.ID, itemID, -1); !errors.Is(err, database.ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}

	// Another user's cart cannot reach this line.
	if err := store.SetItemQuantity(ctx, db, stranger.ID, itemID, 1); !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected ErrCartItemNotFound for foreign item, got %v", err)
	}

	// Zero removes the line.
	if err := store.SetItemQuantity(ctx, db, user.ID, itemID, 0); err != nil {
		t.Fatalf("Set quantity to zero: %v", err)
	}
	view, err = store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("Expected empty cart after zero quantity, got %d items", len(view.Items))
	}
}

func TestRemoveAndClearCart(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3006)
	categoryID := createTestCategory(t, db, "cleanup")
	first := createTestProduct(t, db, categoryID, "First", 100, 10)
	second := createTestProduct(t, db, categoryID, "Second", 200, 10)

	if err := store.AddItem(ctx, db, user.ID, first.ID, 1); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, second.ID, 1); err != nil {
		t.Fatalf("Add item: %v", err)
	}

	view, err := store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	itemID := view.Items[0].ItemID

	if err := store.RemoveItem(ctx, db, user.ID, itemID); err != nil {
		t.Fatalf("Remove item: %v", err)
	}
	if err := store.RemoveItem(ctx, db, user.ID, itemID); !errors.Is(err, database.ErrCartItemNotFound) {
		t.Errorf("Expected ErrCartItemNotFound on second remove, got %v", err)
	}

	if err := store.ClearCart(ctx, db, user.ID); err != nil {
		t.Fatalf("Clear cart: %v", err)
	}
	view, err = store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("Expected empty cart after clear, got %d items", len(view.Items))
	}
}

func TestViewCartFlagsInactiveLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	user := createTestUser(t, db, 3007)
	categoryID := createTestCategory(t, db, "stale")
	kept := createTestProduct(t, db, categoryID, "Kept", 100, 10)
	gone := createTestProduct(t, db, categoryID, "Gone", 400, 10)

	if err := store.AddItem(ctx, db, user.ID, kept.ID, 2); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	if err := store.AddItem(ctx, db, user.ID, gone.ID, 1); err != nil {
		t.Fatalf("Add item: %v", err)
	}
	if err := store.DeactivateProduct(ctx, db, gone.ID); err != nil {
		t.Fatalf("Deactivate product: %v", err)
	}

	view, err := store.ViewCart(ctx, db, user.ID, "RUB")
	if err != nil {
		t.Fatalf("View cart: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(view.Items))
	}

	var unavailable int
	for _, line := range view.Items {
		if line.Unavailable {
			unavailable++
			if line.ProductID != gone.ID {
				t.Errorf("Expected product %d flagged, got %d", gone.ID, line.ProductID)
			}
		}
	}
	if unavailable != 1 {
		t.Errorf("Expected 1 unavailable line, got %d", unavailable)
	}

	// Totals count only the purchasable line.
	if view.TotalItems != 2 {
		t.Errorf("Expected total items 2, got %d", view.TotalItems)
	}
	if !view.TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected total amount 200, got %s", view.TotalAmount)
	}
}
