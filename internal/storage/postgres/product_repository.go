package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type productRepository struct {
	c conn
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var id int64
	err := r.c.q.QueryRowContext(ctx, `
		INSERT INTO products (name, price, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, product.Name, product.Price, product.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// Get внутри транзакции блокирует строку товара, чтобы проверка остатка
// и его списание не пересекались с параллельными заказами.
func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var product domain.Product
	err := r.c.q.QueryRowContext(ctx, `
		SELECT id, name, price, quantity
		FROM products
		WHERE id = $1`+r.c.forUpdate,
		id,
	).Scan(&product.ID, &product.Name, &product.Price, &product.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	rows, err := r.c.q.QueryContext(ctx, `
		SELECT id, name, price, quantity
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Quantity); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) error {
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
	if v, ok := patch.Price.Get(); ok {
		add("price", v)
	}
	if v, ok := patch.Quantity.Get(); ok {
		add("quantity", v)
	}
	args = append(args, id)

	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	res, err := r.c.q.ExecContext(ctx,
		fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res, domain.ErrProductNotFound)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	res, err := r.c.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res, domain.ErrProductNotFound)
}

// AdjustStock меняет остаток одним UPDATE с условием неотрицательности.
func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var quantity int
	err := r.c.q.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity
	`, id, delta).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("adjust product stock: %w", err)
	}

	var available int
	err = r.c.q.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1`, id).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrProductNotFound
		}
		return 0, fmt.Errorf("select product stock: %w", err)
	}
	return 0, &domain.StockError{ProductID: id, Requested: -delta, Available: available}
}

var _ domain.ProductRepository = (*productRepository)(nil)
