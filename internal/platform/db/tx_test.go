package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestPgErrorClassification(t *testing.T) {
	serial := fmt.Errorf("post: %w", &pgconn.PgError{Code: "40001"})
	if !IsSerializationFailure(serial) {
		t.Fatalf("expected wrapped 40001 to be a serialization failure")
	}
	if IsUniqueViolation(serial) {
		t.Fatalf("40001 is not a unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if IsSerializationFailure(errors.New("boom")) {
		t.Fatalf("plain errors are not serialization failures")
	}
}
