package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type productRepository struct {
	acc access
}

func (r *productRepository) Create(_ context.Context, product domain.Product) (int64, error) {
	var id int64
	err := r.acc.write(func(s *state) error {
		id = s.nextProductID
		s.nextProductID++
		product.ID = id
		s.products[id] = product
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *productRepository) Get(_ context.Context, id int64) (domain.Product, error) {
	var product domain.Product
	err := r.acc.read(func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = p
		return nil
	})
	return product, err
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, 0)
	err := r.acc.read(func(s *state) error {
		for _, p := range s.products {
			result = append(result, p)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

func (r *productRepository) Update(_ context.Context, id int64, patch domain.ProductPatch) error {
	if patch.Empty() {
		return domain.ErrNothingToUpdate
	}
	return r.acc.write(func(s *state) error {
		current, ok := s.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		s.products[id] = patch.Apply(current)
		return nil
	})
}

func (r *productRepository) Delete(_ context.Context, id int64) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		for _, order := range s.orders {
			for _, item := range order.Items {
				if item.ProductID == id {
					return domain.ErrProductInUse
				}
			}
		}
		delete(s.products, id)
		return nil
	})
}

func (r *productRepository) AdjustStock(_ context.Context, id int64, delta int) (int, error) {
	var remaining int
	err := r.acc.write(func(s *state) error {
		product, ok := s.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if product.Quantity+delta < 0 {
			return &domain.StockError{ProductID: id, Requested: -delta, Available: product.Quantity}
		}
		product.Quantity += delta
		s.products[id] = product
		remaining = product.Quantity
		return nil
	})
	return remaining, err
}

var _ domain.ProductRepository = (*productRepository)(nil)
