package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_created_total",
		Help: "Orders created through checkout.",
	})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_cancelled_total",
		Help: "Orders cancelled (stock restored).",
	})

	CheckoutStockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_checkout_stock_conflicts_total",
		Help: "Checkout attempts rejected for insufficient stock.",
	})
)
