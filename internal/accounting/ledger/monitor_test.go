package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

func TestSyncMonitorAlertsAfterThreshold(t *testing.T) {
	m := NewSyncMonitor(3, time.Minute)
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	boom := errors.New("insert ledger_entries: boom")
	if m.RecordFailure(base, boom) || m.RecordFailure(base.Add(time.Second), boom) {
		t.Fatalf("alert raised before threshold")
	}
	if !m.RecordFailure(base.Add(2*time.Second), boom) {
		t.Fatalf("expected alert on third consecutive failure")
	}
	snap := m.Snapshot()
	if snap.ConsecutiveFailures != 3 || snap.TotalFailures != 3 || snap.Alerts != 1 || snap.LastError != boom.Error() {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	m.RecordSuccess()
	if got := m.Snapshot().ConsecutiveFailures; got != 0 {
		t.Fatalf("expected streak reset, got %d", got)
	}
}

func TestSyncMonitorWindowResetsStreak(t *testing.T) {
	m := NewSyncMonitor(2, time.Minute)
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	m.RecordFailure(base, nil)
	if m.RecordFailure(base.Add(2*time.Minute), nil) {
		t.Fatalf("stale failure should not count towards the streak")
	}
	if got := m.Snapshot().ConsecutiveFailures; got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}

func TestSyncMonitorDefaults(t *testing.T) {
	snap := NewSyncMonitor(0, 0).Snapshot()
	if snap.Threshold != DefaultSyncAlertThreshold || snap.WindowSeconds != 300 {
		t.Fatalf("unexpected defaults %+v", snap)
	}
	var nilMonitor *SyncMonitor
	if nilMonitor.RecordFailure(time.Now(), nil) {
		t.Fatalf("nil monitor must not alert")
	}
}

func TestLegacyRowsDescription(t *testing.T) {
	rows := LegacyRows([]PostedLine{
		{EntryNumber: "JE-SAL-10", LineNo: 1, AccountID: 4, Debit: decimal.NewFromInt(115), Description: "Invoice 10"},
		{EntryNumber: "JE-SAL-10", LineNo: 2, AccountID: 5, Credit: decimal.NewFromInt(115)},
	})
	if rows[0].Description != "JE JE-SAL-10 L1 Invoice 10" || rows[1].Description != "JE JE-SAL-10 L2" {
		t.Fatalf("unexpected descriptions %q / %q", rows[0].Description, rows[1].Description)
	}
	if LegacyDescriptionPrefix("JE-SAL-1") == rows[0].Description[:len(LegacyDescriptionPrefix("JE-SAL-1"))] {
		t.Fatalf("prefix of JE-SAL-1 must not match JE-SAL-10 rows")
	}
}

func TestSignedBalance(t *testing.T) {
	d, c := decimal.NewFromInt(30), decimal.NewFromInt(100)
	if !SignedBalance(accounts.AccountTypeLiability, d, c).Equal(decimal.NewFromInt(70)) {
		t.Fatalf("liability balance should be credit minus debit")
	}
	if !SignedBalance(accounts.AccountTypeRevenue, d, c).Equal(decimal.NewFromInt(-70)) {
		t.Fatalf("revenue balance should be debit minus credit")
	}
}
