package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Month — ключ помесячной группировки (год и месяц в UTC).
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf возвращает месяц, к которому относится момент времени.
func MonthOf(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Month: t.Month()}
}

// String форматирует месяц как YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before сравнивает месяцы хронологически.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// MonthlyCount — количество заказов за месяц.
type MonthlyCount struct {
	Month Month
	Count int
}

// MonthlyRevenue — выручка по выполненным заказам за месяц.
type MonthlyRevenue struct {
	Month   Month
	Revenue decimal.Decimal
}

// ProductSales — сколько единиц товара продано по всем позициям заказов.
type ProductSales struct {
	ProductID int64
	Name      string
	UnitsSold int
}

// CustomerSpend — сумма выполненных заказов клиента.
type CustomerSpend struct {
	CustomerID int64
	Name       string
	Total      decimal.Decimal
}

// OrderSummary — краткие сведения о заказе для отчётов.
type OrderSummary struct {
	ID           int64
	CustomerName string
	TotalAmount  decimal.Decimal
	Status       OrderStatus
}
