package analytics

import (
	"context"

	"github.com/shopspring/decimal"
)

// ValueBucket — диапазон сумм заказа [Min, Max). Max пуст у открытого диапазона.
type ValueBucket struct {
	Label   string
	Min     decimal.Decimal
	Max     *decimal.Decimal
	Count   int
	Percent decimal.Decimal
}

func (b ValueBucket) contains(v decimal.Decimal) bool {
	if v.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || v.LessThan(*b.Max)
}

var bucketBounds = []int64{0, 1000, 5000, 10000, 50000}

func newBuckets() []ValueBucket {
	buckets := make([]ValueBucket, 0, len(bucketBounds))
	for i, lower := range bucketBounds {
		b := ValueBucket{Min: decimal.NewFromInt(lower)}
		if i+1 < len(bucketBounds) {
			upper := decimal.NewFromInt(bucketBounds[i+1])
			b.Max = &upper
			b.Label = b.Min.String() + "-" + upper.String()
		} else {
			b.Label = b.Min.String() + "+"
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// ValueStats — минимальный, максимальный и средний чек выполненных заказов.
type ValueStats struct {
	Count   int
	Min     decimal.Decimal
	Max     decimal.Decimal
	Average decimal.Decimal
}

// Distribute раскладывает суммы по фиксированным диапазонам и возвращает
// только непустые диапазоны с долей в процентах.
func Distribute(totals []decimal.Decimal) []ValueBucket {
	buckets := newBuckets()
	for _, v := range totals {
		for i := range buckets {
			if buckets[i].contains(v) {
				buckets[i].Count++
				break
			}
		}
	}

	result := make([]ValueBucket, 0, len(buckets))
	if len(totals) == 0 {
		return result
	}
	n := decimal.NewFromInt(int64(len(totals)))
	for _, b := range buckets {
		if b.Count == 0 {
			continue
		}
		b.Percent = decimal.NewFromInt(int64(b.Count)).Div(n).Mul(hundred).Round(1)
		result = append(result, b)
	}
	return result
}

// ValueDistribution распределяет суммы выполненных заказов по диапазонам.
func (e *Engine) ValueDistribution(ctx context.Context) ([]ValueBucket, error) {
	totals, err := e.repo.CompletedOrderTotals(ctx)
	if err != nil {
		return nil, err
	}
	return Distribute(totals), nil
}

// ValueStats считает min/max/avg по выполненным заказам; нули, если их нет.
func (e *Engine) ValueStats(ctx context.Context) (ValueStats, error) {
	totals, err := e.repo.CompletedOrderTotals(ctx)
	if err != nil {
		return ValueStats{}, err
	}

	stats := ValueStats{Count: len(totals), Min: decimal.Zero, Max: decimal.Zero, Average: decimal.Zero}
	if len(totals) == 0 {
		return stats, nil
	}
	stats.Min = decimal.Min(totals[0], totals[1:]...)
	stats.Max = decimal.Max(totals[0], totals[1:]...)
	stats.Average = decimal.Avg(totals[0], totals[1:]...).Round(2)
	return stats, nil
}
