package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому вызывающий код может проверять errors.Is(err, ErrNotFound) и т.п.
var (
	// ErrNotFound — клиент, товар или заказ отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушение уникальности (например, email клиента).
	ErrConflict = errors.New("conflict")
	// ErrReferentialBlock — удаление запрещено, на запись ссылаются другие строки.
	ErrReferentialBlock = errors.New("referenced by dependent records")
	// ErrValidation — некорректные входные данные.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock — на складе меньше товара, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrTransactionFailure — многошаговая запись откатилась из-за сбоя хранилища.
	ErrTransactionFailure = errors.New("transaction failed")
)

var (
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)

	// ErrOutboxMessageNotFound — сообщение outbox с таким ID отсутствует.
	ErrOutboxMessageNotFound = fmt.Errorf("outbox message %w", ErrNotFound)

	// ErrEmailTaken возвращается при добавлении клиента с уже существующим email.
	ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)

	// ErrCustomerHasOrders — нельзя удалить клиента, у которого есть заказы.
	ErrCustomerHasOrders = fmt.Errorf("customer has orders: %w", ErrReferentialBlock)
	// ErrProductInUse — нельзя удалить товар, который используется в заказах.
	ErrProductInUse = fmt.Errorf("product is used in orders: %w", ErrReferentialBlock)

	ErrNameRequired      = fmt.Errorf("name is required: %w", ErrValidation)
	ErrEmailRequired     = fmt.Errorf("email is required: %w", ErrValidation)
	ErrPriceNegative     = fmt.Errorf("price must be non-negative: %w", ErrValidation)
	ErrQuantityNegative  = fmt.Errorf("quantity must be non-negative: %w", ErrValidation)
	ErrItemsRequired     = fmt.Errorf("order must contain at least one item: %w", ErrValidation)
	ErrItemQtyInvalid    = fmt.Errorf("item quantity must be greater than zero: %w", ErrValidation)
	ErrStatusInvalid     = fmt.Errorf("status must be one of pending, completed, cancelled: %w", ErrValidation)
	ErrNothingToUpdate   = fmt.Errorf("no fields to update: %w", ErrValidation)
	ErrInvalidIdentifier = fmt.Errorf("identifier must be positive: %w", ErrValidation)
)

// StockError сообщает, что по позиции заказа не хватает остатка.
type StockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Is позволяет сравнивать StockError с ErrInsufficientStock через errors.Is.
func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ErrorKind — машиночитаемый вид ошибки для метрик и кодов выхода CLI.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindReferentialBlock   ErrorKind = "referential_block"
	KindValidation         ErrorKind = "validation"
	KindInsufficientStock  ErrorKind = "insufficient_stock"
	KindTransactionFailure ErrorKind = "transaction_failure"
	KindInternal           ErrorKind = "internal"
)

// KindOf классифицирует ошибку по таксономии домена.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTransactionFailure):
		return KindTransactionFailure
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrReferentialBlock):
		return KindReferentialBlock
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	default:
		return KindInternal
	}
}

// IsBusinessError сообщает, что ошибка относится к предметной области,
// а не к сбою хранилища.
func IsBusinessError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindConflict, KindReferentialBlock, KindValidation, KindInsufficientStock:
		return true
	default:
		return false
	}
}

// TransactionFailure оборачивает сбой хранилища, из-за которого транзакция откатилась.
func TransactionFailure(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransactionFailure, cause)
}

// Message возвращает стабильный текст результата для слоя представления.
func Message(err error) string {
	switch KindOf(err) {
	case KindNone:
		return "ok"
	case KindInternal:
		return "internal error: " + err.Error()
	default:
		return err.Error()
	}
}
