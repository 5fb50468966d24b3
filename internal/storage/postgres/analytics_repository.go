package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// analyticsRepository выполняет агрегирующие запросы напрямую через пул соединений.
type analyticsRepository struct {
	c conn
}

func (r *analyticsRepository) count(ctx context.Context, table string) (int, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var n int
	if err := r.c.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *analyticsRepository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, "orders")
}

func (r *analyticsRepository) CountCustomers(ctx context.Context) (int, error) {
	return r.count(ctx, "customers")
}

func (r *analyticsRepository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "products")
}

func (r *analyticsRepository) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[domain.OrderStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (r *analyticsRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return r.decimal(ctx, "total revenue", `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE status = 'completed'
	`)
}

func (r *analyticsRepository) AverageOrderValue(ctx context.Context) (decimal.Decimal, error) {
	return r.decimal(ctx, "average order value", `
		SELECT COALESCE(AVG(total_amount), 0)
		FROM orders
		WHERE status <> 'cancelled'
	`)
}

func (r *analyticsRepository) decimal(ctx context.Context, what, query string) (decimal.Decimal, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var value decimal.Decimal
	if err := r.c.q.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return decimal.Zero, fmt.Errorf("query %s: %w", what, err)
	}
	return value, nil
}

func (r *analyticsRepository) ProductSales(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT p.id, p.name, SUM(i.quantity)::int AS units
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		GROUP BY p.id, p.name
		ORDER BY units DESC, p.id
		`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query product sales: %w", err)
	}
	defer rows.Close()

	result := make([]domain.ProductSales, 0)
	for rows.Next() {
		var sales domain.ProductSales
		if err := rows.Scan(&sales.ProductID, &sales.Name, &sales.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		result = append(result, sales)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product sales: %w", err)
	}
	return result, nil
}

func (r *analyticsRepository) CustomerSpend(ctx context.Context, limit int) ([]domain.CustomerSpend, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(o.total_amount) AS spent
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.status = 'completed'
		GROUP BY c.id, c.name
		ORDER BY spent DESC, c.id
		`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query customer spend: %w", err)
	}
	defer rows.Close()

	result := make([]domain.CustomerSpend, 0)
	for rows.Next() {
		var spend domain.CustomerSpend
		if err := rows.Scan(&spend.CustomerID, &spend.Name, &spend.Total); err != nil {
			return nil, fmt.Errorf("scan customer spend: %w", err)
		}
		result = append(result, spend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer spend: %w", err)
	}
	return result, nil
}

func (r *analyticsRepository) OrdersByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT
			EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int AS y,
			EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS m,
			COUNT(*)
		FROM orders
		GROUP BY y, m
		ORDER BY y, m
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders by month: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyCount, 0)
	for rows.Next() {
		var (
			year, month int
			item        domain.MonthlyCount
		)
		if err := rows.Scan(&year, &month, &item.Count); err != nil {
			return nil, fmt.Errorf("scan monthly count: %w", err)
		}
		item.Month = domain.Month{Year: year, Month: time.Month(month)}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly counts: %w", err)
	}
	return result, nil
}

func (r *analyticsRepository) RevenueByMonth(ctx context.Context) ([]domain.MonthlyRevenue, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT
			EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int AS y,
			EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS m,
			SUM(total_amount)
		FROM orders
		WHERE status = 'completed'
		GROUP BY y, m
		ORDER BY y, m
	`)
	if err != nil {
		return nil, fmt.Errorf("query revenue by month: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyRevenue, 0)
	for rows.Next() {
		var (
			year, month int
			item        domain.MonthlyRevenue
		)
		if err := rows.Scan(&year, &month, &item.Revenue); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}
		item.Month = domain.Month{Year: year, Month: time.Month(month)}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly revenue: %w", err)
	}
	return result, nil
}

func (r *analyticsRepository) CompletedOrderTotals(ctx context.Context) ([]decimal.Decimal, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT total_amount
		FROM orders
		WHERE status = 'completed'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query completed totals: %w", err)
	}
	defer rows.Close()

	totals := make([]decimal.Decimal, 0)
	for rows.Next() {
		var total decimal.Decimal
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("scan completed total: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed totals: %w", err)
	}
	return totals, nil
}

func (r *analyticsRepository) LargestOrder(ctx context.Context) (domain.OrderSummary, bool, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var (
		summary domain.OrderSummary
		status  string
	)
	err := r.c.q.QueryRowContext(ctx, `
		SELECT o.id, c.name, o.total_amount, o.status
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.total_amount DESC, o.id
		LIMIT 1
	`).Scan(&summary.ID, &summary.CustomerName, &summary.TotalAmount, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderSummary{}, false, nil
		}
		return domain.OrderSummary{}, false, fmt.Errorf("query largest order: %w", err)
	}
	summary.Status = domain.OrderStatus(status)
	return summary, true, nil
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("LIMIT %d", limit)
}

var _ domain.AnalyticsRepository = (*analyticsRepository)(nil)
