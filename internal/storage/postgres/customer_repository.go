package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type customerRepository struct {
	c conn
}

func (r *customerRepository) Create(ctx context.Context, customer domain.Customer) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var id int64
	err := r.c.q.QueryRowContext(ctx, `
		INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id
	`, customer.Name, customer.Email, customer.Phone).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrEmailTaken
		}
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

func (r *customerRepository) Get(ctx context.Context, id int64) (domain.Customer, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var customer domain.Customer
	err := r.c.q.QueryRowContext(ctx, `
		SELECT id, name, email, phone
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT id, name, email, phone
		FROM customers
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

// Update собирает SET только из переданных полей.
func (r *customerRepository) Update(ctx context.Context, id int64, patch domain.CustomerPatch) error {
	if patch.Empty() {
		return domain.ErrNothingToUpdate
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if v, ok := patch.Name.Get(); ok {
		add("name", v)
	}
	if v, ok := patch.Email.Get(); ok {
		add("email", v)
	}
	if v, ok := patch.Phone.Get(); ok {
		add("phone", v)
	}
	args = append(args, id)

	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	res, err := r.c.q.ExecContext(ctx,
		fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return requireAffected(res, domain.ErrCustomerNotFound)
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	res, err := r.c.q.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerHasOrders
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireAffected(res, domain.ErrCustomerNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
