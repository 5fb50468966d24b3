package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orderdesk/internal/app"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/health"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/analytics"
	"github.com/vladislavdragonenkov/orderdesk/internal/service/seed"
)

type commands struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
}

func (c *commands) dispatch(ctx context.Context, args []string) error {
	group := args[0]
	switch group {
	case "health":
		return c.health(ctx)
	case "demo":
		return c.demo(ctx)
	}
	if len(args) < 2 {
		return usageErr("%s: command is required", group)
	}
	name, rest := args[1], args[2:]

	switch group {
	case "customer":
		return c.customer(ctx, name, rest)
	case "product":
		return c.product(ctx, name, rest)
	case "order":
		return c.order(ctx, name, rest)
	case "report":
		return c.report(ctx, name, rest)
	case "data":
		return c.data(ctx, name, rest)
	case "events":
		return c.events(ctx, name)
	default:
		return usageErr("unknown group %q", group)
	}
}

func (c *commands) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *commands) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr("%s: %v", fs.Name(), err)
	}
	return nil
}

// visited возвращает имена флагов, явно заданных в командной строке.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func requireID(fs *flag.FlagSet, name string, id int64) error {
	if id <= 0 {
		return usageErr("%s: -%s must be a positive id", fs.Name(), name)
	}
	return nil
}

func (c *commands) customer(ctx context.Context, name string, args []string) error {
	fs := c.flags("customer " + name)
	id := fs.Int64("id", 0, "customer id")
	fullName := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	svc := c.app.Catalog
	switch name {
	case "add":
		newID, err := svc.AddCustomer(ctx, domain.Customer{Name: *fullName, Email: *email, Phone: *phone})
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: fmt.Sprintf("customer %d added", newID), ID: newID})
	case "list":
		customers, err := svc.ListCustomers(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, customerViews(customers))
	case "get":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		customer, err := svc.GetCustomer(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, customerView(customer))
	case "update":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		set := visited(fs)
		var patch domain.CustomerPatch
		if set["name"] {
			patch.Name = domain.Some(*fullName)
		}
		if set["email"] {
			patch.Email = domain.Some(*email)
		}
		if set["phone"] {
			patch.Phone = domain.Some(*phone)
		}
		if err := svc.UpdateCustomer(ctx, *id, patch); err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: fmt.Sprintf("customer %d updated", *id), ID: *id})
	case "delete":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		msg, err := svc.DeleteCustomer(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: msg, ID: *id})
	default:
		return usageErr("unknown customer command %q", name)
	}
}

func (c *commands) product(ctx context.Context, name string, args []string) error {
	fs := c.flags("product " + name)
	id := fs.Int64("id", 0, "product id")
	title := fs.String("name", "", "product name")
	price := fs.String("price", "", "unit price, e.g. 1999.90")
	quantity := fs.Int("quantity", 0, "units in stock")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	var parsedPrice decimal.Decimal
	set := visited(fs)
	if set["price"] {
		p, err := decimal.NewFromString(strings.TrimSpace(*price))
		if err != nil {
			return usageErr("%s: invalid -price %q", fs.Name(), *price)
		}
		parsedPrice = p
	}

	svc := c.app.Catalog
	switch name {
	case "add":
		newID, err := svc.AddProduct(ctx, domain.Product{Name: *title, Price: parsedPrice, Quantity: *quantity})
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: fmt.Sprintf("product %d added", newID), ID: newID})
	case "list":
		products, err := svc.ListProducts(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, productViews(products))
	case "get":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		product, err := svc.GetProduct(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, productView(product))
	case "update":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		var patch domain.ProductPatch
		if set["name"] {
			patch.Name = domain.Some(*title)
		}
		if set["price"] {
			patch.Price = domain.Some(parsedPrice)
		}
		if set["quantity"] {
			patch.Quantity = domain.Some(*quantity)
		}
		if err := svc.UpdateProduct(ctx, *id, patch); err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: fmt.Sprintf("product %d updated", *id), ID: *id})
	case "delete":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		msg, err := svc.DeleteProduct(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: msg, ID: *id})
	default:
		return usageErr("unknown product command %q", name)
	}
}

// itemsFlag собирает повторяемый флаг -item product_id:quantity.
type itemsFlag []domain.LineItem

func (f *itemsFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, item := range *f {
		parts = append(parts, fmt.Sprintf("%d:%d", item.ProductID, item.Quantity))
	}
	return strings.Join(parts, ",")
}

func (f *itemsFlag) Set(raw string) error {
	productPart, qtyPart, ok := strings.Cut(raw, ":")
	if !ok {
		return fmt.Errorf("expected product_id:quantity, got %q", raw)
	}
	productID, err := strconv.ParseInt(strings.TrimSpace(productPart), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", productPart)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyPart))
	if err != nil {
		return fmt.Errorf("invalid quantity %q", qtyPart)
	}
	*f = append(*f, domain.LineItem{ProductID: productID, Quantity: qty})
	return nil
}

func (c *commands) order(ctx context.Context, name string, args []string) error {
	fs := c.flags("order " + name)
	id := fs.Int64("id", 0, "order id")
	customerID := fs.Int64("customer", 0, "customer id")
	status := fs.String("status", "", "new status: pending|completed|cancelled")
	var items itemsFlag
	fs.Var(&items, "item", "line item product_id:quantity (repeatable)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	mgr := c.app.Orders
	switch name {
	case "create":
		// Проверка позиций и клиента выполняется менеджером.
		res, err := mgr.CreateOrder(ctx, *customerID, items)
		if err != nil {
			return err
		}
		return writeJSON(c.out, createOrderOut{OrderID: res.OrderID, Total: money(res.Total), Message: res.Message})
	case "list":
		views, err := mgr.ListOrders(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, orderViews(views))
	case "get":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		view, err := mgr.GetOrder(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, orderView(view))
	case "by-customer":
		if err := requireID(fs, "customer", *customerID); err != nil {
			return err
		}
		views, err := mgr.ListOrdersByCustomer(ctx, *customerID)
		if err != nil {
			return err
		}
		return writeJSON(c.out, orderViews(views))
	case "status":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		if err := mgr.UpdateOrderStatus(ctx, *id, domain.OrderStatus(strings.TrimSpace(*status))); err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: fmt.Sprintf("order %d status set to %s", *id, *status), ID: *id})
	case "delete":
		if err := requireID(fs, "id", *id); err != nil {
			return err
		}
		msg, err := mgr.DeleteOrder(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: msg, ID: *id})
	default:
		return usageErr("unknown order command %q", name)
	}
}

func (c *commands) report(ctx context.Context, name string, args []string) error {
	fs := c.flags("report " + name)
	limit := fs.Int("limit", analytics.DefaultTopLimit, "number of rows for popular/top")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	engine := c.app.Analytics
	switch name {
	case "summary":
		summary, err := engine.Summary(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, summaryView(summary))
	case "popular":
		products, err := engine.PopularProducts(ctx, *limit)
		if err != nil {
			return err
		}
		return writeJSON(c.out, productSalesViews(products))
	case "best":
		best, err := engine.BestCustomer(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, customerSpendView(best))
	case "top":
		top, err := engine.TopCustomers(ctx, *limit)
		if err != nil {
			return err
		}
		return writeJSON(c.out, customerSpendViews(top))
	case "by-month":
		report, err := engine.MonthlyOrders(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, monthlyOrdersView(report))
	case "revenue-by-month":
		report, err := engine.MonthlyRevenue(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, monthlyRevenueView(report))
	case "distribution":
		buckets, err := engine.ValueDistribution(ctx)
		if err != nil {
			return err
		}
		stats, err := engine.ValueStats(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, distributionView(buckets, stats))
	default:
		return usageErr("unknown report %q", name)
	}
}

func (c *commands) data(ctx context.Context, name string, args []string) error {
	fs := c.flags("data " + name)
	orders := fs.Int("orders", c.app.Config.Seed.Orders, "number of random orders to create")
	randomSeed := fs.Uint64("seed", c.app.Config.Seed.RandomSeed, "random seed, 0 = time based")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	switch name {
	case "seed":
		c.app.Config.Seed.Orders = *orders
		c.app.Config.Seed.RandomSeed = *randomSeed
		res, err := c.app.Seed(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, res)
	case "clear":
		msg, err := c.app.Seeder.Clear(ctx)
		if err != nil {
			return err
		}
		return writeJSON(c.out, messageOut{Message: msg})
	default:
		return usageErr("unknown data command %q", name)
	}
}

func (c *commands) events(ctx context.Context, name string) error {
	if name != "publish" {
		return usageErr("unknown events command %q", name)
	}
	res, err := c.app.PublishEvents(ctx)
	if err != nil {
		return err
	}
	return writeJSON(c.out, res)
}

func (c *commands) health(ctx context.Context) error {
	report := c.app.Health.Report(ctx)
	if err := writeJSON(c.out, report); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		return errUnhealthy
	}
	return nil
}

type demoOut struct {
	Seed    seed.Result       `json:"seed"`
	Summary summaryOut        `json:"summary"`
	Popular []productSalesOut `json:"popular"`
	Monthly monthlyOrdersOut  `json:"monthly"`
}

// demo заполняет хранилище и выводит основные отчёты в одном запуске.
// Полезен с драйвером memory, где данные не переживают процесс.
func (c *commands) demo(ctx context.Context) error {
	seeded, err := c.app.Seed(ctx)
	if err != nil {
		return err
	}
	summary, err := c.app.Analytics.Summary(ctx)
	if err != nil {
		return err
	}
	popular, err := c.app.Analytics.PopularProducts(ctx, analytics.DefaultTopLimit)
	if err != nil {
		return err
	}
	monthly, err := c.app.Analytics.MonthlyOrders(ctx)
	if err != nil {
		return err
	}
	return writeJSON(c.out, demoOut{
		Seed:    seeded,
		Summary: summaryView(summary),
		Popular: productSalesViews(popular),
		Monthly: monthlyOrdersView(monthly),
	})
}
