package catalog

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// Service управляет клиентами и товарами: нормализует и проверяет ввод
// до обращения к хранилищу, ограничения целостности проверяет хранилище.
type Service struct {
	store  domain.Repositories
	logger *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(store domain.Repositories, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Service{store: store, logger: logger}
}

// AddCustomer создаёт клиента; ErrEmailTaken, если email уже занят.
func (s *Service) AddCustomer(ctx context.Context, customer domain.Customer) (int64, error) {
	customer.Normalize()
	if errs := customer.Validate(); len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	id, err := s.store.Customers().Create(ctx, customer)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("customer_id", id).Info("customer added")
	return id, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	return s.store.Customers().Get(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Customers().List(ctx)
}

// UpdateCustomer меняет только переданные поля. Пустой патч — ошибка валидации.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, patch domain.CustomerPatch) error {
	patch = patch.Normalize()
	if errs := patch.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := s.store.Customers().Update(ctx, id, patch); err != nil {
		return err
	}
	s.logger.WithField("customer_id", id).Info("customer updated")
	return nil
}

// DeleteCustomer удаляет клиента без заказов и возвращает сообщение о результате.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) (string, error) {
	if err := s.store.Customers().Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCustomerHasOrders) {
			s.logger.WithField("customer_id", id).Warn("customer deletion blocked by orders")
		}
		return "", err
	}
	s.logger.WithField("customer_id", id).Info("customer deleted")
	return fmt.Sprintf("customer %d deleted", id), nil
}

// AddProduct создаёт товар с неотрицательными ценой и остатком.
func (s *Service) AddProduct(ctx context.Context, product domain.Product) (int64, error) {
	product.Normalize()
	if errs := product.Validate(); len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	id, err := s.store.Products().Create(ctx, product)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("product_id", id).Info("product added")
	return id, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.store.Products().Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products().List(ctx)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) error {
	patch = patch.Normalize()
	if errs := patch.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := s.store.Products().Update(ctx, id, patch); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product updated")
	return nil
}

// DeleteProduct удаляет товар, если он не встречается в позициях заказов.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (string, error) {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductInUse) {
			s.logger.WithField("product_id", id).Warn("product deletion blocked by order items")
		}
		return "", err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return fmt.Sprintf("product %d deleted", id), nil
}
