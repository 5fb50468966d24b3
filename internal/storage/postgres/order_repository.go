package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

const constraintItemProduct = "order_items_product_id_fkey"

const orderViewColumns = `
	o.id, o.customer_id, c.name, c.email, o.total_amount, o.status, o.created_at
`

type orderRepository struct {
	c conn
}

// Create вставляет заголовок и позиции заказа. Вне транзакции операция
// выполняется в собственной транзакции.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.c.atomic(ctx, func(q queryer) error {
		err := q.QueryRowContext(ctx, `
			INSERT INTO orders (customer_id, total_amount, status, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, order.CustomerID, order.TotalAmount, string(order.Status), order.CreatedAt).Scan(&id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrCustomerNotFound
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			if _, err := q.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4)
			`, id, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
				if isForeignKeyViolation(err) && violatedConstraint(err) == constraintItemProduct {
					return domain.ErrProductNotFound
				}
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var (
		order  domain.Order
		status string
	)
	err := r.c.q.QueryRowContext(ctx, `
		SELECT id, customer_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.TotalAmount, &status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = order.CreatedAt.UTC()

	lines, err := r.loadLines(ctx, []int64{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	for _, line := range lines[order.ID] {
		order.Items = append(order.Items, line.OrderItem)
	}
	return order, nil
}

func (r *orderRepository) View(ctx context.Context, id int64) (domain.OrderView, error) {
	views, err := r.listViews(ctx, `WHERE o.id = $1`, id)
	if err != nil {
		return domain.OrderView{}, err
	}
	if len(views) == 0 {
		return domain.OrderView{}, domain.ErrOrderNotFound
	}
	return views[0], nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.OrderView, error) {
	return r.listViews(ctx, ``)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error) {
	return r.listViews(ctx, `WHERE o.customer_id = $1`, customerID)
}

// listViews сначала читает заголовки целиком и только потом позиции:
// на соединении транзакции нельзя держать открытыми два курсора.
func (r *orderRepository) listViews(ctx context.Context, where string, args ...any) ([]domain.OrderView, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT `+orderViewColumns+`
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		`+where+`
		ORDER BY o.created_at DESC, o.id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	views := make([]domain.OrderView, 0)
	for rows.Next() {
		var (
			view   domain.OrderView
			status string
		)
		if err := rows.Scan(
			&view.ID, &view.CustomerID, &view.CustomerName, &view.CustomerEmail,
			&view.TotalAmount, &status, &view.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		view.Status = domain.OrderStatus(status)
		view.CreatedAt = view.CreatedAt.UTC()
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	rows.Close()

	if len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(views))
	for _, view := range views {
		ids = append(ids, view.ID)
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Lines = lines[views[i].ID]
	}
	return views, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrStatusInvalid
	}

	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	res, err := r.c.q.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireAffected(res, domain.ErrOrderNotFound)
}

// Delete удаляет позиции и заголовок заказа.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	return r.c.atomic(ctx, func(q queryer) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		res, err := q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return requireAffected(res, domain.ErrOrderNotFound)
	})
}

func (r *orderRepository) loadLines(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	rows, err := r.c.q.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, p.name
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.id
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice, &line.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		result[line.OrderID] = append(result[line.OrderID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return result, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
