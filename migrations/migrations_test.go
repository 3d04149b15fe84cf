package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestEmbeddedMigrationsParse(t *testing.T) {
	src, err := iofs.New(FS, ".")
	if err != nil {
		t.Fatalf("iofs source: %v", err)
	}
	defer src.Close()
	first, err := src.First()
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first version 1, got %d", first)
	}
	if _, _, err := src.ReadDown(first); err != nil {
		t.Fatalf("version %d has no down migration: %v", first, err)
	}
}

func TestSchemaCreatesLedgerTables(t *testing.T) {
	raw, err := fs.ReadFile(FS, "000001_init_gl.up.sql")
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	for _, table := range []string{
		"accounts", "fiscal_years", "fiscal_year_exceptional_periods", "journal_entries",
		"journal_lines", "journal_audit", "ledger_entries", "audit_logs",
	} {
		if !strings.Contains(string(raw), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("missing table %s", table)
		}
	}
}
