package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// helper для создания заказа с двумя позициями.
func makeOrder() domain.Order {
	return domain.Order{
		ID:         1,
		CustomerID: 1,
		Status:     domain.OrderStatusPending,
		CreatedAt:  time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 1, Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
			{ID: 2, OrderID: 1, ProductID: 2, Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
		},
	}
}

func TestOrderItemsTotalAndUnits(t *testing.T) {
	order := makeOrder()

	if got := order.ItemsTotal(); !got.Equal(decimal.NewFromInt(325)) {
		t.Fatalf("expected total 325, got %s", got)
	}
	if got := order.Units(); got != 5 {
		t.Fatalf("expected 5 units, got %d", got)
	}
}

func TestOrderStatusValid(t *testing.T) {
	tests := []struct {
		status domain.OrderStatus
		want   bool
	}{
		{status: domain.OrderStatusPending, want: true},
		{status: domain.OrderStatusCompleted, want: true},
		{status: domain.OrderStatusCancelled, want: true},
		{status: "canceled", want: false},
		{status: "", want: false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := tc.status.Valid(); got != tc.want {
				t.Fatalf("status %q valid=%v, want %v", tc.status, got, tc.want)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus("  Completed ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", status)
	}

	if _, err := domain.ParseOrderStatus("shipped"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateLineItems(t *testing.T) {
	cases := []struct {
		name  string
		items []domain.LineItem
		want  error
	}{
		{name: "empty", items: nil, want: domain.ErrItemsRequired},
		{name: "zero qty", items: []domain.LineItem{{ProductID: 1, Quantity: 0}}, want: domain.ErrItemQtyInvalid},
		{name: "negative qty", items: []domain.LineItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: -1}}, want: domain.ErrItemQtyInvalid},
		{name: "ok", items: []domain.LineItem{{ProductID: 1, Quantity: 1}}, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.ValidateLineItems(tc.items)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMonth(t *testing.T) {
	m := domain.MonthOf(time.Date(2024, time.February, 29, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600)))

	// 23:30 at UTC-2 is already March in UTC.
	if m.String() != "2024-03" {
		t.Fatalf("expected 2024-03, got %s", m)
	}
	if !(domain.Month{Year: 2023, Month: time.December}).Before(m) {
		t.Fatal("expected 2023-12 before 2024-03")
	}
	if m.Before(domain.Month{Year: 2024, Month: time.March}) {
		t.Fatal("month must not be before itself")
	}
}
