package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

const (
	defaultConnTimeout     = 5 * time.Second
	defaultOpTimeout       = 5 * time.Second
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// Options задаёт параметры пула соединений и таймауты операций.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	OpTimeout       time.Duration
}

// Option настраивает Store.
type Option func(*Options)

func WithMaxOpenConns(n int) Option {
	return func(o *Options) { o.MaxOpenConns = n }
}

func WithMaxIdleConns(n int) Option {
	return func(o *Options) { o.MaxIdleConns = n }
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = d }
}

// WithOpTimeout задаёт таймаут одного SQL-запроса.
func WithOpTimeout(d time.Duration) Option {
	return func(o *Options) { o.OpTimeout = d }
}

// queryer — общее подмножество *sql.DB и *sql.Tx, с которым работают репозитории.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn описывает, через что и как репозиторий выполняет запросы.
type conn struct {
	q         queryer
	db        *sql.DB
	timeout   time.Duration
	inTx      bool
	forUpdate string
}

// atomic выполняет fn в уже открытой транзакции либо открывает новую.
func (c conn) atomic(ctx context.Context, fn func(q queryer) error) (err error) {
	if c.inTx || c.db == nil {
		return fn(c.q)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (c conn) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.timeout)
}

// Store оборачивает SQL-подключение к PostgreSQL и реализует domain.Store.
type Store struct {
	db        *sql.DB
	opTimeout time.Duration
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
func Open(ctx context.Context, dsn string, options ...Option) (*Store, error) {
	opts := Options{
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime,
		OpTimeout:       defaultOpTimeout,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db, opTimeout: opts.OpTimeout}, nil
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) root() conn {
	return conn{q: s.db, db: s.db, timeout: s.opTimeout}
}

func (s *Store) Customers() domain.CustomerRepository {
	return &customerRepository{c: s.root()}
}

func (s *Store) Products() domain.ProductRepository {
	return &productRepository{c: s.root()}
}

func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{c: s.root()}
}

func (s *Store) Outbox() domain.OutboxRepository {
	return &outboxRepository{c: s.root()}
}

func (s *Store) Analytics() domain.AnalyticsRepository {
	return &analyticsRepository{c: s.root()}
}

// txRepositories — репозитории, привязанные к одной *sql.Tx.
// Чтения товаров внутри транзакции блокируют строки (SELECT ... FOR UPDATE).
type txRepositories struct {
	c conn
}

func (r txRepositories) Customers() domain.CustomerRepository { return &customerRepository{c: r.c} }
func (r txRepositories) Products() domain.ProductRepository   { return &productRepository{c: r.c} }
func (r txRepositories) Orders() domain.OrderRepository       { return &orderRepository{c: r.c} }
func (r txRepositories) Outbox() domain.OutboxRepository      { return &outboxRepository{c: r.c} }

// WithinTx открывает транзакцию, выполняет fn и фиксирует её.
// При ошибке fn или панике транзакция откатывается.
func (s *Store) WithinTx(ctx context.Context, fn domain.TxFunc) (err error) {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := txRepositories{c: conn{q: tx, timeout: s.opTimeout, inTx: true, forUpdate: " FOR UPDATE"}}
	if err = fn(ctx, repos); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Clear удаляет все данные и сбрасывает последовательности идентификаторов.
// TRUNCATE нескольких таблиц выполняется одной командой и атомарен.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	execCtx, cancel := s.root().ctx(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(execCtx, `
		TRUNCATE TABLE order_items, orders, products, customers, outbox_messages
		RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema применяет все ещё не применённые миграции схемы.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx)
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return hasPgCode(err, "23505")
}

func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, "23503")
}

func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

var _ domain.Store = (*Store)(nil)
