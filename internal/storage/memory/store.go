package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// state — полный снимок данных хранилища.
type state struct {
	customers map[int64]domain.Customer
	products  map[int64]domain.Product
	orders    map[int64]domain.Order
	outbox    map[string]*outboxRecord

	nextCustomerID int64
	nextProductID  int64
	nextOrderID    int64
	nextItemID     int64
	outboxSeq      int64
}

func newState() *state {
	return &state{
		customers:      make(map[int64]domain.Customer),
		products:       make(map[int64]domain.Product),
		orders:         make(map[int64]domain.Order),
		outbox:         make(map[string]*outboxRecord),
		nextCustomerID: 1,
		nextProductID:  1,
		nextOrderID:    1,
		nextItemID:     1,
		outboxSeq:      1,
	}
}

// clone делает глубокую копию, чтобы транзакция могла работать с ней изолированно.
func (s *state) clone() *state {
	c := &state{
		customers:      make(map[int64]domain.Customer, len(s.customers)),
		products:       make(map[int64]domain.Product, len(s.products)),
		orders:         make(map[int64]domain.Order, len(s.orders)),
		outbox:         make(map[string]*outboxRecord, len(s.outbox)),
		nextCustomerID: s.nextCustomerID,
		nextProductID:  s.nextProductID,
		nextOrderID:    s.nextOrderID,
		nextItemID:     s.nextItemID,
		outboxSeq:      s.outboxSeq,
	}
	for id, customer := range s.customers {
		c.customers[id] = customer
	}
	for id, product := range s.products {
		c.products[id] = product
	}
	for id, order := range s.orders {
		order.Items = append([]domain.OrderItem(nil), order.Items...)
		c.orders[id] = order
	}
	for id, rec := range s.outbox {
		copied := *rec
		c.outbox[id] = &copied
	}
	return c
}

// access задаёт, как репозиторий получает доступ к состоянию.
type access interface {
	read(fn func(s *state) error) error
	write(fn func(s *state) error) error
}

// rootAccess работает с общим состоянием: запись идёт в копию и публикуется только при успехе.
type rootAccess struct {
	store *Store
}

func (a rootAccess) read(fn func(s *state) error) error {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.st)
}

func (a rootAccess) write(fn func(s *state) error) error {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	work := a.store.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	a.store.st = work
	return nil
}

// txAccess работает с рабочей копией транзакции; блокировку держит WithinTx.
type txAccess struct {
	st *state
}

func (a txAccess) read(fn func(s *state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(s *state) error) error { return fn(a.st) }

// repositories связывает репозитории с конкретным способом доступа.
type repositories struct {
	acc access
}

func (r repositories) Customers() domain.CustomerRepository { return &customerRepository{acc: r.acc} }
func (r repositories) Products() domain.ProductRepository   { return &productRepository{acc: r.acc} }
func (r repositories) Orders() domain.OrderRepository       { return &orderRepository{acc: r.acc} }
func (r repositories) Outbox() domain.OutboxRepository      { return &outboxRepository{acc: r.acc} }

// Store — in-memory реализация domain.Store для локальной разработки и тестов.
// Транзакции реализованы через copy-on-write: изменения видны только после успешного завершения.
type Store struct {
	repositories

	mu sync.RWMutex
	st *state
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	s := &Store{st: newState()}
	s.repositories = repositories{acc: rootAccess{store: s}}
	return s
}

func (s *Store) Analytics() domain.AnalyticsRepository {
	return &analyticsRepository{acc: rootAccess{store: s}}
}

// WithinTx выполняет fn над копией состояния и заменяет состояние копией, если fn завершилась без ошибки.
func (s *Store) WithinTx(ctx context.Context, fn domain.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, repositories{acc: txAccess{st: work}}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Clear удаляет все данные и сбрасывает счётчики идентификаторов.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = newState()
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

var _ domain.Store = (*Store)(nil)
