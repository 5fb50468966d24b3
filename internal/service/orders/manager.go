package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/metrics"
)

// Имена операций для логов, метрик и сообщений об откате.
const (
	opCreateOrder  = "create_order"
	opUpdateStatus = "update_order_status"
	opDeleteOrder  = "delete_order"
)

// Option настраивает Manager.
type Option func(*Manager)

// WithLogger задаёт logger менеджера.
func WithLogger(logger *log.Entry) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics включает учёт операций в метриках.
func WithMetrics(orderMetrics *metrics.OrderMetrics) Option {
	return func(m *Manager) {
		m.metrics = orderMetrics
	}
}

// WithClock подменяет источник времени (метка created_at заказа).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager — единственный путь создания, смены статуса и удаления заказов.
// Все многошаговые записи выполняются в одной транзакции хранилища.
type Manager struct {
	store   domain.Store
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewManager создаёт менеджер заказов поверх хранилища.
func NewManager(store domain.Store, options ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: log.WithField("component", "orders"),
		now:    time.Now,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// CreateResult — итог успешного создания заказа.
type CreateResult struct {
	OrderID int64
	Total   decimal.Decimal
	Message string
}

// CreateOrder проверяет клиента, товары и остатки, затем атомарно сохраняет заказ,
// его позиции, списание остатков и событие order.created.
//
// Позиции обрабатываются в переданном порядке; первая ошибочная позиция прерывает операцию.
// Повторяющиеся позиции одного товара проверяются по остатку с учётом уже зарезервированного.
func (m *Manager) CreateOrder(ctx context.Context, customerID int64, items []domain.LineItem) (CreateResult, error) {
	if err := domain.ValidateLineItems(items); err != nil {
		m.recordRejected(opCreateOrder, err)
		return CreateResult{}, err
	}

	start := time.Now()
	var order domain.Order
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := tx.Customers().Get(ctx, customerID); err != nil {
			return err
		}

		reserved := make(map[int64]int, len(items))
		orderItems := make([]domain.OrderItem, 0, len(items))
		for _, item := range items {
			product, err := tx.Products().Get(ctx, item.ProductID)
			if err != nil {
				return err
			}
			available := product.Quantity - reserved[item.ProductID]
			if item.Quantity > available {
				return &domain.StockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: available,
				}
			}
			reserved[item.ProductID] += item.Quantity
			orderItems = append(orderItems, domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		order = domain.Order{
			CustomerID: customerID,
			Status:     domain.OrderStatusPending,
			CreatedAt:  m.now().UTC(),
			Items:      orderItems,
		}
		order.TotalAmount = order.ItemsTotal()

		id, err := tx.Orders().Create(ctx, order)
		if err != nil {
			return err
		}
		order.ID = id

		for _, item := range orderItems {
			if _, err := tx.Products().AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		return enqueueEvent(ctx, tx, domain.EventOrderCreated, newCreatedEvent(order))
	})
	m.recordDuration(opCreateOrder, start)
	if err != nil {
		err = classify(opCreateOrder, err)
		m.recordRejected(opCreateOrder, err)
		m.logger.WithError(err).WithField("customer_id", customerID).Warn("order creation rejected")
		return CreateResult{}, err
	}

	if m.metrics != nil {
		m.metrics.RecordOrderCreated()
		m.metrics.RecordStockReserved(order.Units())
	}
	m.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"total":       order.TotalAmount.StringFixed(2),
	}).Info("order created")

	return CreateResult{
		OrderID: order.ID,
		Total:   order.TotalAmount,
		Message: fmt.Sprintf("order %d created, total %s", order.ID, order.TotalAmount.StringFixed(2)),
	}, nil
}

// GetOrder возвращает заказ с именем клиента и позициями.
func (m *Manager) GetOrder(ctx context.Context, id int64) (domain.OrderView, error) {
	return m.store.Orders().View(ctx, id)
}

// ListOrders возвращает все заказы, новые первыми.
func (m *Manager) ListOrders(ctx context.Context) ([]domain.OrderView, error) {
	return m.store.Orders().List(ctx)
}

// ListOrdersByCustomer возвращает заказы клиента; ErrCustomerNotFound, если клиента нет.
func (m *Manager) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error) {
	if _, err := m.store.Customers().Get(ctx, customerID); err != nil {
		return nil, err
	}
	return m.store.Orders().ListByCustomer(ctx, customerID)
}

// UpdateOrderStatus меняет статус заказа. Остатки не затрагиваются.
func (m *Manager) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		m.recordRejected(opUpdateStatus, domain.ErrStatusInvalid)
		return domain.ErrStatusInvalid
	}

	start := time.Now()
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		order, err := tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		return enqueueEvent(ctx, tx, domain.EventOrderStatusChanged, newStatusEvent(order, status))
	})
	m.recordDuration(opUpdateStatus, start)
	if err != nil {
		err = classify(opUpdateStatus, err)
		m.recordRejected(opUpdateStatus, err)
		m.logger.WithError(err).WithField("order_id", id).Warn("order status update rejected")
		return err
	}

	if m.metrics != nil {
		m.metrics.RecordStatusChange(string(status))
	}
	m.logger.WithFields(log.Fields{"order_id": id, "status": status}).Info("order status updated")
	return nil
}

// DeleteOrder возвращает остатки по всем позициям и удаляет заказ одной транзакцией.
// При сбое откатывается всё, остатки не меняются.
func (m *Manager) DeleteOrder(ctx context.Context, id int64) (string, error) {
	start := time.Now()
	var order domain.Order
	err := m.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		var err error
		order, err = tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if _, err := tx.Products().AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Orders().Delete(ctx, id); err != nil {
			return err
		}
		return enqueueEvent(ctx, tx, domain.EventOrderDeleted, newDeletedEvent(order))
	})
	m.recordDuration(opDeleteOrder, start)
	if err != nil {
		err = classify(opDeleteOrder, err)
		m.recordRejected(opDeleteOrder, err)
		m.logger.WithError(err).WithField("order_id", id).Warn("order deletion rejected")
		return "", err
	}

	if m.metrics != nil {
		m.metrics.RecordOrderDeleted()
		m.metrics.RecordStockRestored(order.Units())
	}
	m.logger.WithFields(log.Fields{"order_id": id, "items": len(order.Items)}).Info("order deleted")
	return fmt.Sprintf("order %d deleted, stock restored for %d item(s)", id, len(order.Items)), nil
}

// classify пропускает ошибки предметной области как есть, а сбои хранилища
// превращает в ErrTransactionFailure с исходной причиной.
func classify(op string, err error) error {
	if domain.IsBusinessError(err) {
		return err
	}
	return domain.TransactionFailure(op, err)
}

func (m *Manager) recordRejected(op string, err error) {
	if m.metrics != nil {
		m.metrics.RecordRejected(op, string(domain.KindOf(err)))
	}
}

func (m *Manager) recordDuration(op string, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordTxDuration(op, time.Since(start))
	}
}
