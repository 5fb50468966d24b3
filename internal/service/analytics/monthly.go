package analytics

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// Направление тренда за период.
const (
	TrendGrowth  = "growth"
	TrendDecline = "decline"
	TrendFlat    = "flat"
)

var hundred = decimal.NewFromInt(100)

// Trend — изменение от первого к последнему месяцу ряда в процентах.
// Defined=false, если месяцев меньше двух или первое значение равно нулю.
type Trend struct {
	Defined   bool
	Percent   decimal.Decimal
	Direction string
}

// ComputeTrend считает (last - first) / first * 100 по значениям ряда.
func ComputeTrend(values []decimal.Decimal) Trend {
	if len(values) < 2 {
		return Trend{}
	}
	first, last := values[0], values[len(values)-1]
	if first.IsZero() {
		return Trend{}
	}

	percent := last.Sub(first).Div(first).Mul(hundred).Round(1)
	direction := TrendFlat
	switch percent.Sign() {
	case 1:
		direction = TrendGrowth
	case -1:
		direction = TrendDecline
	}
	return Trend{Defined: true, Percent: percent, Direction: direction}
}

// MonthlyOrdersReport — число заказов по месяцам с итогами периода.
type MonthlyOrdersReport struct {
	Months          []domain.MonthlyCount
	Total           int
	AveragePerMonth decimal.Decimal
	Trend           Trend
}

// MonthlyRevenueReport — выручка по месяцам с итогами периода.
type MonthlyRevenueReport struct {
	Months          []domain.MonthlyRevenue
	Total           decimal.Decimal
	AveragePerMonth decimal.Decimal
	Trend           Trend
}

// OrdersByMonth группирует все заказы по году-месяцу создания (UTC) по возрастанию.
// Месяцы без заказов отсутствуют в ряду.
func (e *Engine) OrdersByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	return e.repo.OrdersByMonth(ctx)
}

// RevenueByMonth группирует только выполненные заказы.
func (e *Engine) RevenueByMonth(ctx context.Context) ([]domain.MonthlyRevenue, error) {
	return e.repo.RevenueByMonth(ctx)
}

func (e *Engine) MonthlyOrders(ctx context.Context) (MonthlyOrdersReport, error) {
	months, err := e.OrdersByMonth(ctx)
	if err != nil {
		return MonthlyOrdersReport{}, err
	}

	report := MonthlyOrdersReport{Months: months, AveragePerMonth: decimal.Zero}
	values := make([]decimal.Decimal, 0, len(months))
	for _, m := range months {
		report.Total += m.Count
		values = append(values, decimal.NewFromInt(int64(m.Count)))
	}
	if len(months) > 0 {
		report.AveragePerMonth = decimal.NewFromInt(int64(report.Total)).
			Div(decimal.NewFromInt(int64(len(months)))).Round(2)
	}
	report.Trend = ComputeTrend(values)
	return report, nil
}

func (e *Engine) MonthlyRevenue(ctx context.Context) (MonthlyRevenueReport, error) {
	months, err := e.RevenueByMonth(ctx)
	if err != nil {
		return MonthlyRevenueReport{}, err
	}

	report := MonthlyRevenueReport{Months: months, Total: decimal.Zero, AveragePerMonth: decimal.Zero}
	values := make([]decimal.Decimal, 0, len(months))
	for _, m := range months {
		report.Total = report.Total.Add(m.Revenue)
		values = append(values, m.Revenue)
	}
	if len(months) > 0 {
		report.AveragePerMonth = report.Total.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
	}
	report.Trend = ComputeTrend(values)
	return report, nil
}
