package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/catalog"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/orders"
)

const (
	defaultOrders = 20
	// promoteWindow — сколько первых заказов могут быть переведены в completed.
	promoteWindow = 15
	completedRate = 0.7
	maxLines      = 4
	maxLineQty    = 3
)

var sampleCustomers = []domain.Customer{
	{Name: "Ivan Ivanov", Email: "ivan@mail.example", Phone: "+79161234567"},
	{Name: "Petr Petrov", Email: "petr@mail.example", Phone: "+79167654321"},
	{Name: "Maria Sidorova", Email: "maria@mail.example", Phone: "+79169998877"},
	{Name: "Anna Kozlova", Email: "anna@mail.example", Phone: "+79165554433"},
	{Name: "Sergey Smirnov", Email: "sergey@mail.example", Phone: "+79167776655"},
}

var sampleProducts = []domain.Product{
	{Name: "HP Laptop", Price: decimal.NewFromInt(50000), Quantity: 10},
	{Name: "Wireless Mouse", Price: decimal.NewFromInt(1500), Quantity: 50},
	{Name: "Mechanical Keyboard", Price: decimal.NewFromInt(7000), Quantity: 20},
	{Name: "24\" Monitor", Price: decimal.NewFromInt(15000), Quantity: 15},
	{Name: "Sony Headphones", Price: decimal.NewFromInt(8000), Quantity: 30},
	{Name: "Web Camera", Price: decimal.NewFromInt(3000), Quantity: 25},
	{Name: "Microphone", Price: decimal.NewFromInt(4500), Quantity: 15},
	{Name: "Mouse Pad", Price: decimal.NewFromInt(500), Quantity: 100},
}

// Options задаёт объём и воспроизводимость демонстрационных данных.
type Options struct {
	Orders int
	// RandomSeed = 0 означает seed от текущего времени.
	RandomSeed uint64
}

// Result — итог заполнения.
type Result struct {
	Customers int    `json:"customers"`
	Products  int    `json:"products"`
	Orders    int    `json:"orders"`
	Completed int    `json:"completed"`
	Message   string `json:"message"`
}

// Seeder заполняет хранилище демонстрационными данными через сервисы каталога
// и заказов, поэтому соблюдаются те же проверки и события, что и при ручном вводе.
type Seeder struct {
	store   domain.Store
	catalog *catalog.Service
	orders  *orders.Manager
	logger  *log.Entry
}

func NewSeeder(store domain.Store, catalogSvc *catalog.Service, orderManager *orders.Manager, logger *log.Entry) *Seeder {
	if logger == nil {
		logger = log.WithField("component", "seed")
	}
	return &Seeder{store: store, catalog: catalogSvc, orders: orderManager, logger: logger}
}

// Seed добавляет фиксированный набор клиентов и товаров и случайные заказы.
// Клиенты с уже занятым email пропускаются.
func (s *Seeder) Seed(ctx context.Context, opts Options) (Result, error) {
	if opts.Orders <= 0 {
		opts.Orders = defaultOrders
	}
	seed := opts.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	var result Result
	customerIDs := make([]int64, 0, len(sampleCustomers))
	for _, customer := range sampleCustomers {
		id, err := s.catalog.AddCustomer(ctx, customer)
		if err != nil {
			if errors.Is(err, domain.ErrEmailTaken) {
				s.logger.WithField("email", customer.Email).Debug("sample customer already exists")
				continue
			}
			return result, fmt.Errorf("add sample customer: %w", err)
		}
		customerIDs = append(customerIDs, id)
	}

	productIDs := make([]int64, 0, len(sampleProducts))
	for _, product := range sampleProducts {
		id, err := s.catalog.AddProduct(ctx, product)
		if err != nil {
			return result, fmt.Errorf("add sample product: %w", err)
		}
		productIDs = append(productIDs, id)
	}
	result.Customers = len(customerIDs)
	result.Products = len(productIDs)

	if len(customerIDs) == 0 {
		result.Message = fmt.Sprintf("added %d customers, %d products, 0 orders", result.Customers, result.Products)
		return result, nil
	}

	created := make([]int64, 0, opts.Orders)
	for i := 0; i < opts.Orders; i++ {
		customerID := customerIDs[rng.IntN(len(customerIDs))]
		n := 1 + rng.IntN(maxLines)
		lines := make([]domain.LineItem, 0, n)
		for j := 0; j < n; j++ {
			lines = append(lines, domain.LineItem{
				ProductID: productIDs[rng.IntN(len(productIDs))],
				Quantity:  1 + rng.IntN(maxLineQty),
			})
		}

		res, err := s.orders.CreateOrder(ctx, customerID, lines)
		if err != nil {
			if domain.IsBusinessError(err) {
				s.logger.WithError(err).Debug("sample order skipped")
				continue
			}
			return result, fmt.Errorf("create sample order: %w", err)
		}
		created = append(created, res.OrderID)
	}
	result.Orders = len(created)

	for i, id := range created {
		if i >= promoteWindow {
			break
		}
		if rng.Float64() >= completedRate {
			continue
		}
		if err := s.orders.UpdateOrderStatus(ctx, id, domain.OrderStatusCompleted); err != nil {
			return result, fmt.Errorf("complete sample order %d: %w", id, err)
		}
		result.Completed++
	}

	result.Message = fmt.Sprintf("added %d customers, %d products, %d orders (%d completed)",
		result.Customers, result.Products, result.Orders, result.Completed)
	s.logger.WithFields(log.Fields{
		"customers": result.Customers,
		"products":  result.Products,
		"orders":    result.Orders,
		"completed": result.Completed,
	}).Info("sample data seeded")
	return result, nil
}

// Clear удаляет все данные и сбрасывает счётчики идентификаторов одной операцией.
func (s *Seeder) Clear(ctx context.Context) (string, error) {
	if err := s.store.Clear(ctx); err != nil {
		return "", domain.TransactionFailure("clear_all_data", err)
	}
	s.logger.Info("all data cleared")
	return "all data cleared", nil
}
