package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type orderRepository struct {
	acc access
}

// Create сохраняет заголовок и позиции, назначая им идентификаторы.
func (r *orderRepository) Create(_ context.Context, order domain.Order) (int64, error) {
	var id int64
	err := r.acc.write(func(s *state) error {
		if _, ok := s.customers[order.CustomerID]; !ok {
			return domain.ErrCustomerNotFound
		}
		items := make([]domain.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			if _, ok := s.products[item.ProductID]; !ok {
				return domain.ErrProductNotFound
			}
			item.ID = s.nextItemID
			s.nextItemID++
			items = append(items, item)
		}

		id = s.nextOrderID
		s.nextOrderID++
		for i := range items {
			items[i].OrderID = id
		}
		order.ID = id
		order.Items = items
		if order.Status == "" {
			order.Status = domain.OrderStatusPending
		}
		s.orders[id] = order
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *orderRepository) Get(_ context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := r.acc.read(func(s *state) error {
		o, ok := s.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		order = o
		return nil
	})
	return order, err
}

func (r *orderRepository) View(_ context.Context, id int64) (domain.OrderView, error) {
	var view domain.OrderView
	err := r.acc.read(func(s *state) error {
		o, ok := s.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		view = buildView(s, o)
		return nil
	})
	return view, err
}

func (r *orderRepository) List(_ context.Context) ([]domain.OrderView, error) {
	return r.listWhere(func(domain.Order) bool { return true })
}

func (r *orderRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.OrderView, error) {
	return r.listWhere(func(o domain.Order) bool { return o.CustomerID == customerID })
}

func (r *orderRepository) listWhere(match func(domain.Order) bool) ([]domain.OrderView, error) {
	result := make([]domain.OrderView, 0)
	err := r.acc.read(func(s *state) error {
		for _, o := range s.orders {
			if match(o) {
				result = append(result, buildView(s, o))
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, err
}

func (r *orderRepository) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrStatusInvalid
	}
	return r.acc.write(func(s *state) error {
		order, ok := s.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order.Status = status
		s.orders[id] = order
		return nil
	})
}

func (r *orderRepository) Delete(_ context.Context, id int64) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.orders[id]; !ok {
			return domain.ErrOrderNotFound
		}
		delete(s.orders, id)
		return nil
	})
}

func buildView(s *state, o domain.Order) domain.OrderView {
	customer := s.customers[o.CustomerID]
	lines := make([]domain.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, domain.OrderLine{
			OrderItem:   item,
			ProductName: s.products[item.ProductID].Name,
		})
	}
	return domain.OrderView{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		Lines:         lines,
	}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
