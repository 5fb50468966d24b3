package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorHelpers(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: constraintItemProduct}
	plain := errors.New("boom")

	if !isUniqueViolation(unique) || isForeignKeyViolation(unique) {
		t.Fatal("wrapped 23505 must be detected as unique violation only")
	}
	if !isForeignKeyViolation(fk) || isUniqueViolation(fk) {
		t.Fatal("23503 must be detected as foreign key violation only")
	}
	if violatedConstraint(fk) != constraintItemProduct {
		t.Fatalf("unexpected constraint: %q", violatedConstraint(fk))
	}
	if isUniqueViolation(plain) || isForeignKeyViolation(plain) || violatedConstraint(plain) != "" {
		t.Fatal("plain errors must not match pg codes")
	}
}

func TestLimitClause(t *testing.T) {
	t.Parallel()

	if got := limitClause(0); got != "" {
		t.Fatalf("expected no limit, got %q", got)
	}
	if got := limitClause(5); got != "LIMIT 5" {
		t.Fatalf("unexpected limit clause: %q", got)
	}
}
