package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/storage/memory"
)

func newTestService() (*Service, *memory.Store) {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	store := memory.NewStore()
	return NewService(store, baseLogger.WithField("component", "catalog-test")), store
}

func TestAddCustomer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddCustomer(ctx, domain.Customer{Name: "  Alice ", Email: " alice@example.com "})
	require.NoError(t, err)

	got, err := svc.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = svc.AddCustomer(ctx, domain.Customer{Name: "Other", Email: "alice@example.com"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.AddCustomer(ctx, domain.Customer{Name: " ", Email: ""})
	require.ErrorIs(t, err, domain.ErrNameRequired)
	require.ErrorIs(t, err, domain.ErrEmailRequired)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdateCustomer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	id, err := svc.AddCustomer(ctx, domain.Customer{Name: "Alice", Email: "alice@example.com", Phone: "123"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdateCustomer(ctx, id, domain.CustomerPatch{}), domain.ErrNothingToUpdate)
	require.ErrorIs(t, svc.UpdateCustomer(ctx, id, domain.CustomerPatch{Name: domain.Some("  ")}), domain.ErrNameRequired)
	require.ErrorIs(t, svc.UpdateCustomer(ctx, 404, domain.CustomerPatch{Name: domain.Some("X")}), domain.ErrCustomerNotFound)

	require.NoError(t, svc.UpdateCustomer(ctx, id, domain.CustomerPatch{Phone: domain.Some("")}))
	got, err := svc.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Empty(t, got.Phone, "phone can be cleared explicitly")
}

func TestDeleteBlockedByOrders(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	customerID, err := svc.AddCustomer(ctx, domain.Customer{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	productID, err := svc.AddProduct(ctx, domain.Product{Name: "Pen", Price: decimal.NewFromInt(2), Quantity: 5})
	require.NoError(t, err)

	_, err = store.Orders().Create(ctx, domain.Order{
		CustomerID:  customerID,
		TotalAmount: decimal.NewFromInt(2),
		Items:       []domain.OrderItem{{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)

	_, err = svc.DeleteCustomer(ctx, customerID)
	require.ErrorIs(t, err, domain.ErrReferentialBlock)
	_, err = svc.DeleteProduct(ctx, productID)
	require.ErrorIs(t, err, domain.ErrReferentialBlock)

	otherID, err := svc.AddCustomer(ctx, domain.Customer{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	msg, err := svc.DeleteCustomer(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, "customer 2 deleted", msg)

	_, err = svc.GetCustomer(ctx, otherID)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestProductLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, domain.Product{Name: "Pen", Price: decimal.NewFromInt(-1), Quantity: -1})
	require.ErrorIs(t, err, domain.ErrPriceNegative)
	require.ErrorIs(t, err, domain.ErrQuantityNegative)

	id, err := svc.AddProduct(ctx, domain.Product{Name: "Pen", Price: decimal.RequireFromString("2.50"), Quantity: 5})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProduct(ctx, id, domain.ProductPatch{Quantity: domain.Some(0)}))
	got, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))

	require.ErrorIs(t, svc.UpdateProduct(ctx, id, domain.ProductPatch{Price: domain.Some(decimal.NewFromInt(-3))}), domain.ErrPriceNegative)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	msg, err := svc.DeleteProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "product 1 deleted", msg)

	_, err = svc.DeleteProduct(ctx, id)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}
