package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// orderEvent — полезная нагрузка событий заказа в outbox.
type orderEvent struct {
	OrderID        int64           `json:"order_id"`
	CustomerID     int64           `json:"customer_id"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []eventItem     `json:"items,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type eventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func newCreatedEvent(order domain.Order) orderEvent {
	event := baseEvent(order)
	event.Items = make([]eventItem, 0, len(order.Items))
	for _, item := range order.Items {
		event.Items = append(event.Items, eventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	event.OccurredAt = order.CreatedAt
	return event
}

func newStatusEvent(order domain.Order, status domain.OrderStatus) orderEvent {
	event := baseEvent(order)
	event.PreviousStatus = string(order.Status)
	event.Status = string(status)
	return event
}

// newDeletedEvent перечисляет позиции, по которым возвращён остаток.
func newDeletedEvent(order domain.Order) orderEvent {
	event := newCreatedEvent(order)
	event.OccurredAt = time.Now().UTC()
	return event
}

func baseEvent(order domain.Order) orderEvent {
	return orderEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

func enqueueEvent(ctx context.Context, tx domain.Repositories, eventType string, event orderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	_, err = tx.Outbox().Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   strconv.FormatInt(event.OrderID, 10),
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s event: %w", eventType, err)
	}
	return nil
}
