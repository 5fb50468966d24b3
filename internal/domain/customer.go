package domain

import "strings"

// Customer — клиент, оформляющий заказы.
type Customer struct {
	ID    int64
	Name  string
	Email string
	// Phone необязателен и может быть пустым.
	Phone string
}

// Normalize обрезает пробелы по краям строковых полей.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
}

// Validate проверяет обязательные поля клиента.
func (c *Customer) Validate() []error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrEmailRequired)
	}
	return errs
}

// CustomerPatch описывает частичное обновление: меняются только переданные поля.
// Phone можно явно очистить, передав Some("").
type CustomerPatch struct {
	Name  Optional[string]
	Email Optional[string]
	Phone Optional[string]
}

func (p CustomerPatch) Empty() bool {
	return !p.Name.IsSet() && !p.Email.IsSet() && !p.Phone.IsSet()
}

// Normalize обрезает пробелы в переданных полях.
func (p CustomerPatch) Normalize() CustomerPatch {
	return CustomerPatch{
		Name:  trimOptional(p.Name),
		Email: trimOptional(p.Email),
		Phone: trimOptional(p.Phone),
	}
}

// Validate проверяет, что обязательные поля не очищаются.
func (p CustomerPatch) Validate() []error {
	var errs []error
	if p.Empty() {
		return append(errs, ErrNothingToUpdate)
	}
	if v, ok := p.Name.Get(); ok && v == "" {
		errs = append(errs, ErrNameRequired)
	}
	if v, ok := p.Email.Get(); ok && v == "" {
		errs = append(errs, ErrEmailRequired)
	}
	return errs
}

// Apply возвращает копию клиента с применёнными изменениями.
func (p CustomerPatch) Apply(c Customer) Customer {
	c.Name = p.Name.OrElse(c.Name)
	c.Email = p.Email.OrElse(c.Email)
	c.Phone = p.Phone.OrElse(c.Phone)
	return c
}

func trimOptional(o Optional[string]) Optional[string] {
	if v, ok := o.Get(); ok {
		return Some(strings.TrimSpace(v))
	}
	return o
}
