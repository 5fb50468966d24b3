package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает выполнения (значение по умолчанию).
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted — заказ выполнен; только такие заказы входят в выручку.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses перечисляет допустимые статусы в порядке жизненного цикла.
var OrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus разбирает статус из пользовательского ввода.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrStatusInvalid
	}
	return status, nil
}

// LineItem — запрошенная позиция при создании заказа.
type LineItem struct {
	ProductID int64
	Quantity  int
}

// ValidateLineItems проверяет запрос до обращения к хранилищу.
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrItemsRequired
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrItemQtyInvalid
		}
	}
	return nil
}

// OrderItem — сохранённая позиция заказа. После создания заказа позиции не меняются.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	// UnitPrice — цена товара на момент оформления заказа.
	UnitPrice decimal.Decimal
}

// Subtotal возвращает стоимость позиции.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order — заголовок заказа вместе с позициями.
type Order struct {
	ID          int64
	CustomerID  int64
	TotalAmount decimal.Decimal
	Status      OrderStatus
	CreatedAt   time.Time
	Items       []OrderItem
}

// ItemsTotal пересчитывает сумму по позициям.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Units возвращает суммарное количество единиц товара в заказе.
func (o *Order) Units() int {
	var units int
	for _, item := range o.Items {
		units += item.Quantity
	}
	return units
}

// OrderLine — позиция заказа для отображения, с названием товара.
type OrderLine struct {
	OrderItem
	ProductName string
}

// OrderView — заказ с данными клиента и позициями для отображения.
type OrderView struct {
	ID            int64
	CustomerID    int64
	CustomerName  string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
	Lines         []OrderLine
}
