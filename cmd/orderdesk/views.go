package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/analytics"
)

// Денежные суммы выводятся строкой с двумя знаками после запятой.

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type messageOut struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type errorOut struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func errorView(err error) errorOut {
	return errorOut{Error: domain.Message(err), Kind: string(domain.KindOf(err))}
}

type customerOut struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func customerView(c domain.Customer) customerOut {
	return customerOut{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func customerViews(in []domain.Customer) []customerOut {
	out := make([]customerOut, 0, len(in))
	for _, c := range in {
		out = append(out, customerView(c))
	}
	return out
}

type productOut struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

func productView(p domain.Product) productOut {
	return productOut{ID: p.ID, Name: p.Name, Price: money(p.Price), Quantity: p.Quantity}
}

func productViews(in []domain.Product) []productOut {
	out := make([]productOut, 0, len(in))
	for _, p := range in {
		out = append(out, productView(p))
	}
	return out
}

type orderLineOut struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type orderOut struct {
	ID            int64          `json:"id"`
	CustomerID    int64          `json:"customer_id"`
	CustomerName  string         `json:"customer_name"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	TotalAmount   string         `json:"total_amount"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	Lines         []orderLineOut `json:"lines"`
}

func orderView(v domain.OrderView) orderOut {
	lines := make([]orderLineOut, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, orderLineOut{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
		})
	}
	return orderOut{
		ID:            v.ID,
		CustomerID:    v.CustomerID,
		CustomerName:  v.CustomerName,
		CustomerEmail: v.CustomerEmail,
		TotalAmount:   money(v.TotalAmount),
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt.UTC(),
		Lines:         lines,
	}
}

func orderViews(in []domain.OrderView) []orderOut {
	out := make([]orderOut, 0, len(in))
	for _, v := range in {
		out = append(out, orderView(v))
	}
	return out
}

type createOrderOut struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
	Message string `json:"message"`
}

type productSalesOut struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}

func productSalesViews(in []domain.ProductSales) []productSalesOut {
	out := make([]productSalesOut, 0, len(in))
	for _, p := range in {
		out = append(out, productSalesOut{ProductID: p.ProductID, Name: p.Name, UnitsSold: p.UnitsSold})
	}
	return out
}

type customerSpendOut struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Total      string `json:"total"`
}

func customerSpendView(c domain.CustomerSpend) customerSpendOut {
	return customerSpendOut{CustomerID: c.CustomerID, Name: c.Name, Total: money(c.Total)}
}

func customerSpendViews(in []domain.CustomerSpend) []customerSpendOut {
	out := make([]customerSpendOut, 0, len(in))
	for _, c := range in {
		out = append(out, customerSpendView(c))
	}
	return out
}

type largestOrderOut struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	TotalAmount  string `json:"total_amount"`
	Status       string `json:"status"`
}

type summaryOut struct {
	Orders            int              `json:"orders"`
	Customers         int              `json:"customers"`
	Products          int              `json:"products"`
	TotalRevenue      string           `json:"total_revenue"`
	AverageOrderValue string           `json:"average_order_value"`
	ByStatus          map[string]int   `json:"by_status"`
	LargestOrder      *largestOrderOut `json:"largest_order,omitempty"`
}

func summaryView(s analytics.Summary) summaryOut {
	out := summaryOut{
		Orders:            s.Orders,
		Customers:         s.Customers,
		Products:          s.Products,
		TotalRevenue:      money(s.TotalRevenue),
		AverageOrderValue: money(s.AverageOrderValue),
		ByStatus:          make(map[string]int, len(s.ByStatus)),
	}
	for status, n := range s.ByStatus {
		out.ByStatus[string(status)] = n
	}
	if s.LargestOrder != nil {
		out.LargestOrder = &largestOrderOut{
			ID:           s.LargestOrder.ID,
			CustomerName: s.LargestOrder.CustomerName,
			TotalAmount:  money(s.LargestOrder.TotalAmount),
			Status:       string(s.LargestOrder.Status),
		}
	}
	return out
}

type trendOut struct {
	Percent   string `json:"percent"`
	Direction string `json:"direction"`
}

func trendView(t analytics.Trend) *trendOut {
	if !t.Defined {
		return nil
	}
	return &trendOut{Percent: t.Percent.StringFixed(1), Direction: t.Direction}
}

type monthCountOut struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type monthlyOrdersOut struct {
	Months          []monthCountOut `json:"months"`
	Total           int             `json:"total"`
	AveragePerMonth string          `json:"average_per_month"`
	Trend           *trendOut       `json:"trend,omitempty"`
}

func monthlyOrdersView(r analytics.MonthlyOrdersReport) monthlyOrdersOut {
	months := make([]monthCountOut, 0, len(r.Months))
	for _, m := range r.Months {
		months = append(months, monthCountOut{Month: m.Month.String(), Count: m.Count})
	}
	return monthlyOrdersOut{
		Months:          months,
		Total:           r.Total,
		AveragePerMonth: r.AveragePerMonth.StringFixed(2),
		Trend:           trendView(r.Trend),
	}
}

type monthRevenueOut struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
}

type monthlyRevenueOut struct {
	Months          []monthRevenueOut `json:"months"`
	Total           string            `json:"total"`
	AveragePerMonth string            `json:"average_per_month"`
	Trend           *trendOut         `json:"trend,omitempty"`
}

func monthlyRevenueView(r analytics.MonthlyRevenueReport) monthlyRevenueOut {
	months := make([]monthRevenueOut, 0, len(r.Months))
	for _, m := range r.Months {
		months = append(months, monthRevenueOut{Month: m.Month.String(), Revenue: money(m.Revenue)})
	}
	return monthlyRevenueOut{
		Months:          months,
		Total:           money(r.Total),
		AveragePerMonth: money(r.AveragePerMonth),
		Trend:           trendView(r.Trend),
	}
}

type bucketOut struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent string `json:"percent"`
}

type valueStatsOut struct {
	Count   int    `json:"count"`
	Min     string `json:"min"`
	Max     string `json:"max"`
	Average string `json:"average"`
}

type distributionOut struct {
	Buckets []bucketOut   `json:"buckets"`
	Stats   valueStatsOut `json:"stats"`
}

func distributionView(buckets []analytics.ValueBucket, stats analytics.ValueStats) distributionOut {
	out := distributionOut{
		Buckets: make([]bucketOut, 0, len(buckets)),
		Stats: valueStatsOut{
			Count:   stats.Count,
			Min:     money(stats.Min),
			Max:     money(stats.Max),
			Average: money(stats.Average),
		},
	}
	for _, b := range buckets {
		out.Buckets = append(out.Buckets, bucketOut{Label: b.Label, Count: b.Count, Percent: b.Percent.StringFixed(1)})
	}
	return out
}
