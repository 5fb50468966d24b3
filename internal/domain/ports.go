package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CustomerRepository — хранилище клиентов.
type CustomerRepository interface {
	// Create сохраняет клиента и возвращает назначенный ID; ErrEmailTaken при дубликате email.
	Create(ctx context.Context, customer Customer) (int64, error)
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(ctx context.Context, id int64) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	// Update применяет частичное обновление; ErrCustomerNotFound, если клиента нет.
	Update(ctx context.Context, id int64, patch CustomerPatch) error
	// Delete удаляет клиента; ErrCustomerHasOrders, если на него ссылаются заказы.
	Delete(ctx context.Context, id int64) error
}

// ProductRepository — хранилище товаров и складских остатков.
type ProductRepository interface {
	Create(ctx context.Context, product Product) (int64, error)
	// Get возвращает товар или ErrProductNotFound. Внутри транзакции строка блокируется до её завершения.
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, id int64, patch ProductPatch) error
	// Delete удаляет товар; ErrProductInUse, если он есть в позициях заказов.
	Delete(ctx context.Context, id int64) error
	// AdjustStock меняет остаток на delta. Остаток не может стать отрицательным: в этом случае
	// возвращается *StockError и остаток не меняется.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}

// OrderRepository — хранилище заказов и их позиций.
type OrderRepository interface {
	// Create сохраняет заголовок и позиции заказа, возвращает ID заказа.
	Create(ctx context.Context, order Order) (int64, error)
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id int64) (Order, error)
	// View возвращает заказ с именем клиента и названиями товаров.
	View(ctx context.Context, id int64) (OrderView, error)
	// List возвращает все заказы, новые первыми.
	List(ctx context.Context) ([]OrderView, error)
	// ListByCustomer возвращает заказы клиента, новые первыми.
	ListByCustomer(ctx context.Context, customerID int64) ([]OrderView, error)
	// UpdateStatus меняет статус; ErrOrderNotFound, если заказа нет.
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	// Delete удаляет позиции и заголовок заказа. Остатки не трогает.
	Delete(ctx context.Context, id int64) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// AnalyticsRepository выполняет агрегирующие запросы только на чтение.
// На пустом хранилище все методы возвращают нули и пустые срезы.
type AnalyticsRepository interface {
	CountOrders(ctx context.Context) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context) (map[OrderStatus]int, error)
	// TotalRevenue суммирует total_amount выполненных заказов.
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	// AverageOrderValue — среднее total_amount по неотменённым заказам.
	AverageOrderValue(ctx context.Context) (decimal.Decimal, error)
	// ProductSales ранжирует товары по проданным единицам (по убыванию, затем по ID).
	ProductSales(ctx context.Context, limit int) ([]ProductSales, error)
	// CustomerSpend ранжирует клиентов по сумме выполненных заказов (по убыванию, затем по ID).
	CustomerSpend(ctx context.Context, limit int) ([]CustomerSpend, error)
	OrdersByMonth(ctx context.Context) ([]MonthlyCount, error)
	RevenueByMonth(ctx context.Context) ([]MonthlyRevenue, error)
	// CompletedOrderTotals возвращает суммы выполненных заказов в порядке ID.
	CompletedOrderTotals(ctx context.Context) ([]decimal.Decimal, error)
	// LargestOrder возвращает самый дорогой заказ; ok=false на пустом хранилище.
	LargestOrder(ctx context.Context) (summary OrderSummary, ok bool, err error)
}
