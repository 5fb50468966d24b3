package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
)

func seedCatalog(t *testing.T, store *memory.Store) (customerID, productID int64) {
	t.Helper()
	ctx := context.Background()

	customerID, err := store.Customers().Create(ctx, domain.Customer{Name: "Ivan Ivanov", Email: "ivan@mail.test"})
	require.NoError(t, err)
	productID, err = store.Products().Create(ctx, domain.Product{Name: "Laptop", Price: decimal.NewFromInt(100), Quantity: 10})
	require.NoError(t, err)
	return customerID, productID
}

func newOrder(customerID, productID int64, qty int) domain.Order {
	return domain.Order{
		CustomerID:  customerID,
		TotalAmount: decimal.NewFromInt(int64(100 * qty)),
		Status:      domain.OrderStatusPending,
		CreatedAt:   time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(100)},
		},
	}
}

func TestCustomerRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Customers()

	id, err := repo.Create(ctx, domain.Customer{Name: "Anna", Email: "anna@mail.test", Phone: "+7916"})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = repo.Create(ctx, domain.Customer{Name: "Other Anna", Email: "anna@mail.test"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	require.NoError(t, repo.Update(ctx, id, domain.CustomerPatch{Phone: domain.Some("")}))
	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.Customer{ID: id, Name: "Anna", Email: "anna@mail.test"}, got)

	require.ErrorIs(t, repo.Update(ctx, id, domain.CustomerPatch{}), domain.ErrNothingToUpdate)
	require.ErrorIs(t, repo.Update(ctx, 42, domain.CustomerPatch{Name: domain.Some("x")}), domain.ErrCustomerNotFound)

	_, err = repo.Get(ctx, 42)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	require.ErrorIs(t, repo.Delete(ctx, id), domain.ErrCustomerNotFound)
}

func TestCustomerRepository_UpdateEmailConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Customers()

	first, err := repo.Create(ctx, domain.Customer{Name: "A", Email: "a@mail.test"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Customer{Name: "B", Email: "b@mail.test"})
	require.NoError(t, err)

	err = repo.Update(ctx, first, domain.CustomerPatch{Email: domain.Some("b@mail.test")})
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	// Повторная установка собственного email не считается конфликтом.
	require.NoError(t, repo.Update(ctx, first, domain.CustomerPatch{Email: domain.Some("a@mail.test")}))
}

func TestDeleteBlockedByReferences(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)

	_, err := store.Orders().Create(ctx, newOrder(customerID, productID, 1))
	require.NoError(t, err)

	err = store.Customers().Delete(ctx, customerID)
	require.ErrorIs(t, err, domain.ErrCustomerHasOrders)
	require.ErrorIs(t, err, domain.ErrReferentialBlock)

	err = store.Products().Delete(ctx, productID)
	require.ErrorIs(t, err, domain.ErrProductInUse)
}

func TestProductRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_, productID := seedCatalog(t, store)

	left, err := store.Products().AdjustStock(ctx, productID, -4)
	require.NoError(t, err)
	require.Equal(t, 6, left)

	_, err = store.Products().AdjustStock(ctx, productID, -7)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 6, stockErr.Available)

	product, err := store.Products().Get(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 6, product.Quantity)

	_, err = store.Products().AdjustStock(ctx, 99, 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestOrderRepository_CreateViewAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)

	id, err := store.Orders().Create(ctx, newOrder(customerID, productID, 3))
	require.NoError(t, err)

	order, err := store.Orders().Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, id, order.Items[0].OrderID)
	require.NotZero(t, order.Items[0].ID)

	view, err := store.Orders().View(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ivan Ivanov", view.CustomerName)
	require.Equal(t, "Laptop", view.Lines[0].ProductName)
	require.True(t, view.TotalAmount.Equal(decimal.NewFromInt(300)))

	require.NoError(t, store.Orders().UpdateStatus(ctx, id, domain.OrderStatusCompleted))
	require.ErrorIs(t, store.Orders().UpdateStatus(ctx, 77, domain.OrderStatusCompleted), domain.ErrOrderNotFound)

	require.NoError(t, store.Orders().Delete(ctx, id))
	_, err = store.Orders().Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)

	older := newOrder(customerID, productID, 1)
	newer := newOrder(customerID, productID, 2)
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	olderID, err := store.Orders().Create(ctx, older)
	require.NoError(t, err)
	newerID, err := store.Orders().Create(ctx, newer)
	require.NoError(t, err)

	all, err := store.Orders().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newerID, all[0].ID)
	require.Equal(t, olderID, all[1].ID)

	byCustomer, err := store.Orders().ListByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)

	none, err := store.Orders().ListByCustomer(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestWithinTx_RollbackDiscardsAllWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := tx.Orders().Create(ctx, newOrder(customerID, productID, 2)); err != nil {
			return err
		}
		if _, err := tx.Products().AdjustStock(ctx, productID, -2); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	orders, err := store.Orders().List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)

	product, err := store.Products().Get(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 10, product.Quantity)
}

func TestWithinTx_CommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)

	var orderID int64
	err := store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		var err error
		orderID, err = tx.Orders().Create(ctx, newOrder(customerID, productID, 2))
		if err != nil {
			return err
		}
		_, err = tx.Products().AdjustStock(ctx, productID, -2)
		return err
	})
	require.NoError(t, err)

	_, err = store.Orders().Get(ctx, orderID)
	require.NoError(t, err)
	product, err := store.Products().Get(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 8, product.Quantity)
}

func TestClearResetsIdentifiers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	customerID, productID := seedCatalog(t, store)
	_, err := store.Orders().Create(ctx, newOrder(customerID, productID, 1))
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	count, err := store.Analytics().CountOrders(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	id, err := store.Customers().Create(ctx, domain.Customer{Name: "New", Email: "ivan@mail.test"})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}
