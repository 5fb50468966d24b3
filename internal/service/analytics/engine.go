package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

const (
	// DefaultTopLimit применяется, когда лимит рейтинга не задан или не положителен.
	DefaultTopLimit = 5
	// NoDataName — имя-заглушка лучшего клиента, если выполненных заказов нет.
	NoDataName = "no data"
)

// Engine строит отчёты только на чтение. На пустом хранилище отчёты
// содержат нули и пустые списки, а не ошибки.
type Engine struct {
	repo   domain.AnalyticsRepository
	logger *log.Entry
}

// Option настраивает Engine.
type Option func(*Engine)

func WithLogger(logger *log.Entry) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEngine(repo domain.AnalyticsRepository, options ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		logger: log.WithField("component", "analytics"),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Engine) OrdersCount(ctx context.Context) (int, error) {
	return e.repo.CountOrders(ctx)
}

func (e *Engine) CustomersCount(ctx context.Context) (int, error) {
	return e.repo.CountCustomers(ctx)
}

func (e *Engine) ProductsCount(ctx context.Context) (int, error) {
	return e.repo.CountProducts(ctx)
}

// TotalRevenue — сумма выполненных заказов.
func (e *Engine) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return e.repo.TotalRevenue(ctx)
}

// AverageOrderValue — средний чек по неотменённым заказам, 0 если таких нет.
func (e *Engine) AverageOrderValue(ctx context.Context) (decimal.Decimal, error) {
	avg, err := e.repo.AverageOrderValue(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return avg.Round(2), nil
}

// PopularProducts ранжирует товары по проданным единицам во всех заказах.
// Равные значения упорядочены по ID товара.
func (e *Engine) PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	return e.repo.ProductSales(ctx, normalizeLimit(limit))
}

// BestCustomer возвращает клиента с наибольшей суммой выполненных заказов
// или заглушку (NoDataName, 0), если выполненных заказов нет.
func (e *Engine) BestCustomer(ctx context.Context) (domain.CustomerSpend, error) {
	top, err := e.repo.CustomerSpend(ctx, 1)
	if err != nil {
		return domain.CustomerSpend{}, err
	}
	if len(top) == 0 {
		return domain.CustomerSpend{Name: NoDataName, Total: decimal.Zero}, nil
	}
	return top[0], nil
}

// TopCustomers — рейтинг клиентов по сумме выполненных заказов.
func (e *Engine) TopCustomers(ctx context.Context, n int) ([]domain.CustomerSpend, error) {
	return e.repo.CustomerSpend(ctx, normalizeLimit(n))
}

// StatusBreakdown возвращает количество заказов по каждому из трёх статусов.
func (e *Engine) StatusBreakdown(ctx context.Context) (map[domain.OrderStatus]int, error) {
	counts, err := e.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	result := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		result[status] = counts[status]
	}
	return result, nil
}

// Summary — общая статистика для сводного отчёта.
type Summary struct {
	Orders            int
	Customers         int
	Products          int
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	ByStatus          map[domain.OrderStatus]int
	// LargestOrder пуст, если заказов нет.
	LargestOrder *domain.OrderSummary
}

// Summary собирает общую статистику одним вызовом.
func (e *Engine) Summary(ctx context.Context) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.Orders, err = e.OrdersCount(ctx); err != nil {
		return Summary{}, fmt.Errorf("count orders: %w", err)
	}
	if s.Customers, err = e.CustomersCount(ctx); err != nil {
		return Summary{}, fmt.Errorf("count customers: %w", err)
	}
	if s.Products, err = e.ProductsCount(ctx); err != nil {
		return Summary{}, fmt.Errorf("count products: %w", err)
	}
	if s.TotalRevenue, err = e.TotalRevenue(ctx); err != nil {
		return Summary{}, fmt.Errorf("total revenue: %w", err)
	}
	if s.AverageOrderValue, err = e.AverageOrderValue(ctx); err != nil {
		return Summary{}, fmt.Errorf("average order value: %w", err)
	}
	if s.ByStatus, err = e.StatusBreakdown(ctx); err != nil {
		return Summary{}, fmt.Errorf("status breakdown: %w", err)
	}

	largest, ok, err := e.repo.LargestOrder(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("largest order: %w", err)
	}
	if ok {
		s.LargestOrder = &largest
	}

	e.logger.WithField("orders", s.Orders).Debug("summary built")
	return s, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	return limit
}
