package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// analyticsRepository считает агрегаты в памяти, повторяя семантику SQL-запросов PostgreSQL-реализации.
type analyticsRepository struct {
	acc access
}

func (r *analyticsRepository) CountOrders(_ context.Context) (int, error) {
	var n int
	err := r.acc.read(func(s *state) error { n = len(s.orders); return nil })
	return n, err
}

func (r *analyticsRepository) CountCustomers(_ context.Context) (int, error) {
	var n int
	err := r.acc.read(func(s *state) error { n = len(s.customers); return nil })
	return n, err
}

func (r *analyticsRepository) CountProducts(_ context.Context) (int, error) {
	var n int
	err := r.acc.read(func(s *state) error { n = len(s.products); return nil })
	return n, err
}

func (r *analyticsRepository) CountOrdersByStatus(_ context.Context) (map[domain.OrderStatus]int, error) {
	counts := make(map[domain.OrderStatus]int)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			counts[o.Status]++
		}
		return nil
	})
	return counts, err
}

func (r *analyticsRepository) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if o.Status == domain.OrderStatusCompleted {
				total = total.Add(o.TotalAmount)
			}
		}
		return nil
	})
	return total, err
}

func (r *analyticsRepository) AverageOrderValue(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	var n int64
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if o.Status != domain.OrderStatusCancelled {
				sum = sum.Add(o.TotalAmount)
				n++
			}
		}
		return nil
	})
	if err != nil || n == 0 {
		return decimal.Zero, err
	}
	return sum.Div(decimal.NewFromInt(n)), nil
}

func (r *analyticsRepository) ProductSales(_ context.Context, limit int) ([]domain.ProductSales, error) {
	sold := make(map[int64]int)
	names := make(map[int64]string)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			for _, item := range o.Items {
				sold[item.ProductID] += item.Quantity
				names[item.ProductID] = s.products[item.ProductID].Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProductSales, 0, len(sold))
	for id, units := range sold {
		result = append(result, domain.ProductSales{ProductID: id, Name: names[id], UnitsSold: units})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UnitsSold != result[j].UnitsSold {
			return result[i].UnitsSold > result[j].UnitsSold
		}
		return result[i].ProductID < result[j].ProductID
	})
	return truncate(result, limit), nil
}

func (r *analyticsRepository) CustomerSpend(_ context.Context, limit int) ([]domain.CustomerSpend, error) {
	spent := make(map[int64]decimal.Decimal)
	names := make(map[int64]string)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if o.Status != domain.OrderStatusCompleted {
				continue
			}
			spent[o.CustomerID] = spent[o.CustomerID].Add(o.TotalAmount)
			names[o.CustomerID] = s.customers[o.CustomerID].Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.CustomerSpend, 0, len(spent))
	for id, total := range spent {
		result = append(result, domain.CustomerSpend{CustomerID: id, Name: names[id], Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Total.Cmp(result[j].Total); c != 0 {
			return c > 0
		}
		return result[i].CustomerID < result[j].CustomerID
	})
	return truncate(result, limit), nil
}

func (r *analyticsRepository) OrdersByMonth(_ context.Context) ([]domain.MonthlyCount, error) {
	counts := make(map[domain.Month]int)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			counts[domain.MonthOf(o.CreatedAt)]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.MonthlyCount, 0, len(counts))
	for month, n := range counts {
		result = append(result, domain.MonthlyCount{Month: month, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.Before(result[j].Month) })
	return result, nil
}

func (r *analyticsRepository) RevenueByMonth(_ context.Context) ([]domain.MonthlyRevenue, error) {
	revenue := make(map[domain.Month]decimal.Decimal)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if o.Status != domain.OrderStatusCompleted {
				continue
			}
			month := domain.MonthOf(o.CreatedAt)
			revenue[month] = revenue[month].Add(o.TotalAmount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.MonthlyRevenue, 0, len(revenue))
	for month, total := range revenue {
		result = append(result, domain.MonthlyRevenue{Month: month, Revenue: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.Before(result[j].Month) })
	return result, nil
}

func (r *analyticsRepository) CompletedOrderTotals(_ context.Context) ([]decimal.Decimal, error) {
	var completed []domain.Order
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if o.Status == domain.OrderStatusCompleted {
				completed = append(completed, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(completed, func(i, j int) bool { return completed[i].ID < completed[j].ID })
	totals := make([]decimal.Decimal, 0, len(completed))
	for _, o := range completed {
		totals = append(totals, o.TotalAmount)
	}
	return totals, nil
}

func (r *analyticsRepository) LargestOrder(_ context.Context) (domain.OrderSummary, bool, error) {
	var (
		best  domain.OrderSummary
		found bool
	)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if found {
				c := o.TotalAmount.Cmp(best.TotalAmount)
				if c < 0 || (c == 0 && o.ID > best.ID) {
					continue
				}
			}
			best = domain.OrderSummary{
				ID:           o.ID,
				CustomerName: s.customers[o.CustomerID].Name,
				TotalAmount:  o.TotalAmount,
				Status:       o.Status,
			}
			found = true
		}
		return nil
	})
	return best, found, err
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var _ domain.AnalyticsRepository = (*analyticsRepository)(nil)
