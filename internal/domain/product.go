package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product — товар каталога. Quantity — доступный остаток на складе.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
}

// Validate проверяет инварианты товара.
func (p *Product) Validate() []error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Quantity < 0 {
		errs = append(errs, ErrQuantityNegative)
	}
	return errs
}

// ProductPatch описывает частичное обновление товара.
type ProductPatch struct {
	Name     Optional[string]
	Price    Optional[decimal.Decimal]
	Quantity Optional[int]
}

func (p ProductPatch) Empty() bool {
	return !p.Name.IsSet() && !p.Price.IsSet() && !p.Quantity.IsSet()
}

func (p ProductPatch) Normalize() ProductPatch {
	p.Name = trimOptional(p.Name)
	return p
}

func (p ProductPatch) Validate() []error {
	var errs []error
	if p.Empty() {
		return append(errs, ErrNothingToUpdate)
	}
	if v, ok := p.Name.Get(); ok && v == "" {
		errs = append(errs, ErrNameRequired)
	}
	if v, ok := p.Price.Get(); ok && v.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}
	if v, ok := p.Quantity.Get(); ok && v < 0 {
		errs = append(errs, ErrQuantityNegative)
	}
	return errs
}

// Apply возвращает копию товара с применёнными изменениями.
func (p ProductPatch) Apply(product Product) Product {
	product.Name = p.Name.OrElse(product.Name)
	product.Price = p.Price.OrElse(product.Price)
	product.Quantity = p.Quantity.OrElse(product.Quantity)
	return product
}
