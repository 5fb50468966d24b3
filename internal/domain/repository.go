package domain

import "context"

// Repositories — набор репозиториев, работающих в одной области видимости:
// либо напрямую (каждый вызов атомарен сам по себе), либо внутри транзакции.
type Repositories interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository
	Outbox() OutboxRepository
}

// TxFunc выполняется внутри транзакции. Если функция вернула ошибку, все её записи откатываются.
type TxFunc func(ctx context.Context, tx Repositories) error

// Store — хранилище сущностей с поддержкой транзакций.
type Store interface {
	Repositories
	Analytics() AnalyticsRepository

	// WithinTx выполняет fn в одной транзакции: либо применяются все записи, либо ни одной.
	// Внутри fn нужно использовать только переданный tx.
	WithinTx(ctx context.Context, fn TxFunc) error
	// Clear удаляет все данные и сбрасывает счётчики идентификаторов.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
