package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of customer orders placed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected order placements",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of accepted order status transitions",
	}, []string{"to"})

	PurchasesPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_placed_total",
		Help: "Total number of wholesale purchases placed",
	})

	PurchasesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_failed_total",
		Help: "Total number of rejected purchase placements",
	}, []string{"reason"})

	PurchasesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchases_cancelled_total",
		Help: "Total number of cancelled purchases",
	})

	PurchaseStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_status_transitions_total",
		Help: "Total number of accepted purchase status transitions",
	}, []string{"to"})

	InventoryItemsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_items_created_total",
		Help: "Total number of stock records created",
	})

	StockDecrementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_decrement_latency_seconds",
		Help:    "Latency of atomic stock decrement operations",
		Buckets: prometheus.DefBuckets,
	})

	StockDecrementsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_decrements_failed_total",
		Help: "Total number of failed stock decrements",
	}, []string{"reason"})

	WebhooksReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_received_total",
		Help: "Total number of payment webhooks by outcome",
	}, []string{"result"})

	PaymentsReconciledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_reconciled_total",
		Help: "Total number of payments reconciled onto records",
	})

	NotificationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total number of notification rows written",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
