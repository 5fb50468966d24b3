package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

type customerRepository struct {
	acc access
}

func (r *customerRepository) Create(_ context.Context, customer domain.Customer) (int64, error) {
	var id int64
	err := r.acc.write(func(s *state) error {
		if emailTaken(s, customer.Email, 0) {
			return domain.ErrEmailTaken
		}
		id = s.nextCustomerID
		s.nextCustomerID++
		customer.ID = id
		s.customers[id] = customer
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *customerRepository) Get(_ context.Context, id int64) (domain.Customer, error) {
	var customer domain.Customer
	err := r.acc.read(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = c
		return nil
	})
	return customer, err
}

func (r *customerRepository) List(_ context.Context) ([]domain.Customer, error) {
	result := make([]domain.Customer, 0)
	err := r.acc.read(func(s *state) error {
		for _, c := range s.customers {
			result = append(result, c)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

func (r *customerRepository) Update(_ context.Context, id int64, patch domain.CustomerPatch) error {
	if patch.Empty() {
		return domain.ErrNothingToUpdate
	}
	return r.acc.write(func(s *state) error {
		current, ok := s.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		updated := patch.Apply(current)
		if updated.Email != current.Email && emailTaken(s, updated.Email, id) {
			return domain.ErrEmailTaken
		}
		s.customers[id] = updated
		return nil
	})
}

func (r *customerRepository) Delete(_ context.Context, id int64) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.customers[id]; !ok {
			return domain.ErrCustomerNotFound
		}
		for _, order := range s.orders {
			if order.CustomerID == id {
				return domain.ErrCustomerHasOrders
			}
		}
		delete(s.customers, id)
		return nil
	})
}

func emailTaken(s *state, email string, exceptID int64) bool {
	for id, c := range s.customers {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
