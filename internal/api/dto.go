package api

import (
	"time"

	"github.com/safar/tg-shop/internal/models"
	"github.com/safar/tg-shop/internal/store"
	"github.com/shopspring/decimal"
)

// Monetary fields go over the wire as strings with exactly two
// fractional digits, currency carried alongside.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

type productResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Price       string    `json:"price"`
	OldPrice    *string   `json:"old_price,omitempty"`
	Currency    string    `json:"currency"`
	StockCount  int       `json:"stock_count"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Image:       p.Image,
		Price:       money(p.Price),
		OldPrice:    nullMoney(p.OldPrice),
		Currency:    p.Currency,
		StockCount:  p.StockCount,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

type productPageResponse struct {
	Items      []productResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

func toProductPageResponse(page *store.OffsetPage) productPageResponse {
	products, _ := page.Items.([]models.Product)
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return productPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

type cartLineResponse struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	ProductImage string  `json:"product_image,omitempty"`
	Price        string  `json:"price"`
	OldPrice     *string `json:"old_price,omitempty"`
	Quantity     int     `json:"quantity"`
	Subtotal     string  `json:"subtotal"`
	Unavailable  bool    `json:"unavailable,omitempty"`
}

type cartViewResponse struct {
	ID          int64              `json:"id"`
	Items       []cartLineResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalAmount string             `json:"total_amount"`
	Currency    string             `json:"currency"`
}

func toCartViewResponse(view *models.CartView) cartViewResponse {
	items := make([]cartLineResponse, 0, len(view.Items))
	for _, line := range view.Items {
		items = append(items, cartLineResponse{
			ID:           line.ItemID,
			ProductID:    line.ProductID,
			ProductTitle: line.ProductTitle,
			ProductImage: line.ProductImage,
			Price:        money(line.Price),
			OldPrice:     nullMoney(line.OldPrice),
			Quantity:     line.Quantity,
			Subtotal:     money(line.Subtotal),
			Unavailable:  line.Unavailable,
		})
	}
	return cartViewResponse{
		ID:          view.CartID,
		Items:       items,
		TotalItems:  view.TotalItems,
		TotalAmount: money(view.TotalAmount),
		Currency:    view.Currency,
	}
}

type orderItemResponse struct {
	ID           int64  `json:"id"`
	ProductID    *int64 `json:"product_id"`
	ProductTitle string `json:"product_title"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
}

type orderResponse struct {
	ID          int64               `json:"id"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Currency    string              `json:"currency"`
	Items       []orderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			Price:        money(item.Price),
		})
	}
	return orderResponse{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: money(order.TotalAmount),
		Currency:    order.Currency,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}
