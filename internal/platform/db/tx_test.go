package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestSerializationErrMapsSQLState40001(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	err := serializationErr(fmt.Errorf("commit: %w", pgErr))
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestSerializationErrPassesThroughOtherErrors(t *testing.T) {
	want := errors.New("boom")
	if got := serializationErr(want); !errors.Is(got, want) || errors.Is(got, ErrConcurrentModification) {
		t.Fatalf("unrelated error must pass through unchanged, got %v", got)
	}
}

func TestConflictOnMatchesConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_vouchers_number"}
	if err := ConflictOn(pgErr, "uq_vouchers_number"); !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

func TestConflictOnIgnoresOtherConstraints(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_source_links"}
	if err := ConflictOn(pgErr, "uq_vouchers_number"); errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("different constraint must not map to a conflict")
	}
}
