package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	ordersCreated  prometheus.Counter
	ordersRejected *prometheus.CounterVec
	ordersDeleted  prometheus.Counter
	statusChanges  *prometheus.CounterVec
	stockUnits     *prometheus.CounterVec
	txDuration     *prometheus.HistogramVec
}

// NewOrderMetrics регистрирует метрики заказов в registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderdesk_orders_rejected_total",
			Help: "Total number of rejected order operations grouped by operation and error kind",
		}, []string{"operation", "kind"}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_orders_deleted_total",
			Help: "Total number of orders deleted with stock restoration",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderdesk_order_status_changes_total",
			Help: "Total number of order status changes grouped by target status",
		}, []string{"status"}),
		stockUnits: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderdesk_stock_units_total",
			Help: "Total number of stock units reserved by orders or restored on order deletion",
		}, []string{"direction"}),
		txDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orderdesk_order_tx_duration_seconds",
			Help:    "Duration of order transactions in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"operation"}),
	}
}

func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordRejected учитывает отказ операции с машиночитаемым видом ошибки.
func (m *OrderMetrics) RecordRejected(operation, kind string) {
	m.ordersRejected.WithLabelValues(operation, kind).Inc()
}

func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

func (m *OrderMetrics) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordStockReserved учитывает единицы товара, списанные заказом.
func (m *OrderMetrics) RecordStockReserved(units int) {
	m.stockUnits.WithLabelValues("reserved").Add(float64(units))
}

// RecordStockRestored учитывает единицы товара, возвращённые при удалении заказа.
func (m *OrderMetrics) RecordStockRestored(units int) {
	m.stockUnits.WithLabelValues("restored").Add(float64(units))
}

// RecordTxDuration записывает длительность транзакции операции.
func (m *OrderMetrics) RecordTxDuration(operation string, duration time.Duration) {
	m.txDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
