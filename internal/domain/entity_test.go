package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOptional(t *testing.T) {
	var unset Optional[string]
	if unset.IsSet() {
		t.Fatal("zero Optional must be unset")
	}
	if got := unset.OrElse("fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	cleared := Some("")
	if v, ok := cleared.Get(); !ok || v != "" {
		t.Fatalf("expected explicitly empty value, got %q ok=%v", v, ok)
	}
	if None[int]().IsSet() {
		t.Fatal("None must be unset")
	}
}

func TestCustomerPatch(t *testing.T) {
	base := Customer{ID: 1, Name: "Ivan", Email: "ivan@mail.test", Phone: "+7900"}

	t.Run("empty patch", func(t *testing.T) {
		errs := CustomerPatch{}.Validate()
		if len(errs) != 1 || !errors.Is(errs[0], ErrNothingToUpdate) {
			t.Fatalf("expected ErrNothingToUpdate, got %v", errs)
		}
	})

	t.Run("clear phone", func(t *testing.T) {
		patch := CustomerPatch{Phone: Some("")}
		if errs := patch.Validate(); len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		got := patch.Apply(base)
		if got.Phone != "" || got.Name != base.Name || got.Email != base.Email {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("clear name rejected", func(t *testing.T) {
		errs := CustomerPatch{Name: Some("   ")}.Normalize().Validate()
		if len(errs) != 1 || !errors.Is(errs[0], ErrNameRequired) {
			t.Fatalf("expected ErrNameRequired, got %v", errs)
		}
	})
}

func TestProductValidate(t *testing.T) {
	p := Product{Name: "", Price: decimal.NewFromInt(-1), Quantity: -3}
	errs := p.Validate()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
	if !errors.Is(errors.Join(errs...), ErrValidation) {
		t.Fatal("joined errors must match ErrValidation")
	}
}

func TestProductPatchApply(t *testing.T) {
	base := Product{ID: 2, Name: "Mouse", Price: decimal.NewFromInt(1500), Quantity: 50}
	patch := ProductPatch{Quantity: Some(0)}

	if errs := patch.Validate(); len(errs) != 0 {
		t.Fatalf("zero quantity must be allowed: %v", errs)
	}
	got := patch.Apply(base)
	if got.Quantity != 0 || !got.Price.Equal(base.Price) || got.Name != base.Name {
		t.Fatalf("unexpected result: %+v", got)
	}

	if errs := (ProductPatch{Price: Some(decimal.NewFromInt(-5))}).Validate(); len(errs) != 1 {
		t.Fatalf("expected negative price error, got %v", errs)
	}
}
