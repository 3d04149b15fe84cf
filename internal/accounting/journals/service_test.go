package journals_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/memstore"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

var (
	saleDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	clock    = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
)

type cleanAuditor struct{}

func (cleanAuditor) ClosureSnapshot(ctx context.Context, fy periods.FiscalYear, from, to time.Time) (periods.AuditSnapshot, error) {
	return periods.AuditSnapshot{RunID: "test", RunAt: clock()}, nil
}

type fixture struct {
	store    *memstore.Store
	journals *journals.Service
	ledger   *ledger.Service
	periods  *periods.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memstore.New().WithNow(clock)
	require.NoError(t, store.Seed(context.Background(), nil, 2025))
	svc := journals.NewService(store.Journals(), nil)
	svc.WithNow(clock)
	cal := periods.NewService(store.Periods(), nil)
	cal.WithAuditor(cleanAuditor{})
	cal.WithNow(clock)
	return fixture{store: store, journals: svc, ledger: ledger.NewService(store.Ledger()), periods: cal}
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func cashSale(ref string) journals.CreateInput {
	return journals.CreateInput{
		Date:        saleDate,
		BranchCode:  "RUH-01",
		Description: "Cash sale " + ref,
		Kind:        journals.KindSales,
		SourceRef:   ref,
		ActorID:     7,
		Lines: []journals.LineInput{
			{AccountCode: "1112", Debit: amount("115")},
			{AccountCode: "4111", Credit: amount("100")},
			{AccountCode: "2141", Credit: amount("15")},
		},
	}
}

func TestCreatePostsAndProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.journals.Create(ctx, cashSale("INV-1"))
	require.NoError(t, err)
	require.Equal(t, "JE-SAL-INV-1", entry.Number)
	require.Equal(t, journals.StatusPosted, entry.Status)
	require.True(t, entry.TotalDebit.Equal(amount("115")))
	require.True(t, entry.TotalCredit.Equal(amount("115")))

	rows := f.store.LedgerRows()
	require.Len(t, rows, 3)
	require.True(t, strings.HasPrefix(rows[0].Description, "JE JE-SAL-INV-1 L1"))

	records := f.store.AuditRecords()
	require.Len(t, records, 1)
	require.Equal(t, audit.ActionCreate, records[0].Action)
	require.Equal(t, entry.ID, records[0].JournalID)
	require.Nil(t, records[0].Before)

	cash, _, err := f.ledger.AccountBalanceByCode(ctx, "1112", saleDate)
	require.NoError(t, err)
	require.True(t, cash.Equal(amount("115")))
	vat, _, err := f.ledger.AccountBalanceByCode(ctx, "2141", saleDate)
	require.NoError(t, err)
	require.True(t, vat.Equal(amount("15")))
	revenue, err := f.ledger.SumByCodesAndRange(ctx, []string{"4111"}, saleDate, saleDate, true)
	require.NoError(t, err)
	require.True(t, revenue.Equal(amount("100")))

	tb, err := f.ledger.TrialBalance(ctx, saleDate)
	require.NoError(t, err)
	var debit, credit decimal.Decimal
	for _, row := range tb {
		debit = debit.Add(row.Debit)
		credit = credit.Add(row.Credit)
	}
	require.True(t, debit.Equal(credit))
	require.True(t, debit.Equal(amount("115")))
}

func TestCreateRejectsAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashSale("INV-2")
	in.FiscalYear = 2025
	in.Date = time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	in.Lines = []journals.LineInput{
		{AccountCode: "1121", Debit: amount("100")},
		{AccountCode: "111", Credit: amount("90")},
	}

	_, err := f.journals.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorIs(t, err, shared.ErrImbalanced)
	require.ErrorIs(t, err, shared.ErrAccountNotPostable)
	verr, ok := shared.AsValidation(err)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(verr.Messages()), 3)

	require.Zero(t, f.store.EntryCount())
	require.Empty(t, f.store.LedgerRows())
	require.Empty(t, f.store.AuditRecords())
}

func TestCreateRejectsZeroTotal(t *testing.T) {
	f := newFixture(t)
	in := cashSale("INV-0")
	in.Lines = []journals.LineInput{{AccountCode: "1112"}, {AccountCode: "4111"}}
	_, err := f.journals.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrImbalanced)
	require.Zero(t, f.store.EntryCount())
}

func TestNumbersAreSuffixedOnCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashSale("")
	in.Kind = journals.KindManual

	first, err := f.journals.Create(ctx, in)
	require.NoError(t, err)
	second, err := f.journals.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "JE-MAN-20250615", first.Number)
	require.Equal(t, "JE-MAN-20250615-2", second.Number)
}

func TestClosedYearRequiresExceptionalPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	years, err := f.periods.ListYears(ctx)
	require.NoError(t, err)
	_, err = f.periods.Close(ctx, years[0].ID, periods.CloseInput{ActorID: 1})
	require.NoError(t, err)

	_, err = f.journals.Create(ctx, cashSale("INV-3"))
	require.ErrorIs(t, err, shared.ErrFiscalPeriodClosed)
	require.Contains(t, err.Error(), periods.MsgYearClosed)

	_, err = f.periods.AddExceptionalPeriod(ctx, years[0].ID, periods.ExceptionalInput{
		StartDate: saleDate,
		EndDate:   saleDate,
		Reason:    "late supplier invoice",
		ActorID:   1,
	})
	require.NoError(t, err)

	entry, err := f.journals.Create(ctx, cashSale("INV-3"))
	require.NoError(t, err)
	require.Equal(t, journals.StatusPosted, entry.Status)
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashSale("INV-4")
	in.AsDraft = true

	draft, err := f.journals.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, journals.StatusDraft, draft.Status)
	require.Empty(t, f.store.LedgerRows())

	posted, err := f.journals.Post(ctx, draft.ID, 7)
	require.NoError(t, err)
	require.Equal(t, journals.StatusPosted, posted.Status)
	require.Len(t, f.store.LedgerRows(), 3)

	_, err = f.journals.Post(ctx, draft.ID, 7)
	require.ErrorIs(t, err, shared.ErrAlreadyPosted)

	err = f.journals.Delete(ctx, draft.ID, 7)
	require.ErrorIs(t, err, shared.ErrCannotDeletePosted)

	reverted, err := f.journals.RevertToDraft(ctx, draft.ID, 7)
	require.NoError(t, err)
	require.Equal(t, journals.StatusDraft, reverted.Status)
	require.Empty(t, f.store.LedgerRows())

	_, err = f.journals.RevertToDraft(ctx, draft.ID, 7)
	require.ErrorIs(t, err, shared.ErrNotPosted)

	require.NoError(t, f.journals.MarkPrinted(ctx, draft.ID, 7))
	require.NoError(t, f.journals.Delete(ctx, draft.ID, 7))
	_, err = f.journals.Get(ctx, draft.ID)
	require.ErrorIs(t, err, shared.ErrJournalNotFound)

	var actions []audit.Action
	for _, rec := range f.store.AuditRecords() {
		require.Equal(t, draft.ID, rec.JournalID)
		actions = append(actions, rec.Action)
	}
	require.Equal(t, []audit.Action{
		audit.ActionCreate, audit.ActionPost, audit.ActionRevertToDraft, audit.ActionPrint, audit.ActionDelete,
	}, actions)
}

func TestEditDraftRevalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashSale("INV-5")
	in.AsDraft = true
	draft, err := f.journals.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.journals.Edit(ctx, draft.ID, journals.EditInput{
		Date:  saleDate,
		Lines: []journals.LineInput{{AccountCode: "1112", Debit: amount("50")}, {AccountCode: "4111", Credit: amount("40")}},
	})
	require.ErrorIs(t, err, shared.ErrImbalanced)

	edited, err := f.journals.Edit(ctx, draft.ID, journals.EditInput{
		Date:        saleDate,
		Description: "corrected",
		Lines:       []journals.LineInput{{AccountCode: "1112", Debit: amount("50")}, {AccountCode: "4111", Credit: amount("50")}},
		ActorID:     7,
	})
	require.NoError(t, err)
	require.Len(t, edited.Lines, 2)
	require.True(t, edited.TotalDebit.Equal(amount("50")))

	stored, err := f.journals.Get(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, "corrected", stored.Description)
	require.Len(t, stored.Lines, 2)
}

func TestReverseMirrorsOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original, err := f.journals.Create(ctx, cashSale("INV-6"))
	require.NoError(t, err)

	reversal, err := f.journals.Reverse(ctx, original.ID, 9)
	require.NoError(t, err)
	require.Equal(t, "JE-REV-JE-SAL-INV-6", reversal.Number)
	require.Equal(t, journals.StatusPosted, reversal.Status)
	require.NotNil(t, reversal.ReversalOf)
	require.Equal(t, original.ID, *reversal.ReversalOf)
	require.True(t, reversal.Linkage.IsZero())
	require.Len(t, reversal.Lines, len(original.Lines))
	for i, l := range reversal.Lines {
		require.Equal(t, original.Lines[i].AccountCode, l.AccountCode)
		require.True(t, l.Debit.Equal(original.Lines[i].Credit))
		require.True(t, l.Credit.Equal(original.Lines[i].Debit))
		require.True(t, strings.HasPrefix(l.Description, "Reversal of"))
	}

	for _, code := range []string{"1112", "4111", "2141"} {
		bal, _, err := f.ledger.AccountBalanceByCode(ctx, code, saleDate)
		require.NoError(t, err)
		require.True(t, bal.IsZero(), "account %s should net to zero, got %s", code, bal)
	}

	stored, err := f.journals.Get(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, journals.StatusPosted, stored.Status)
	require.Nil(t, stored.ReversalOf)
	require.Len(t, stored.Lines, len(original.Lines))
	for i, l := range stored.Lines {
		require.Equal(t, original.Lines[i].AccountCode, l.AccountCode)
		require.True(t, l.Debit.Equal(original.Lines[i].Debit))
		require.True(t, l.Credit.Equal(original.Lines[i].Credit))
		require.Equal(t, original.Lines[i].Description, l.Description)
	}

	_, err = f.journals.Reverse(ctx, original.ID, 9)
	require.ErrorIs(t, err, shared.ErrReversalExists)

	in := cashSale("INV-7")
	in.AsDraft = true
	draft, err := f.journals.Create(ctx, in)
	require.NoError(t, err)
	_, err = f.journals.Reverse(ctx, draft.ID, 9)
	require.ErrorIs(t, err, shared.ErrNotPosted)
}

func TestUniqueLinkageRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashSale("INV-8")
	in.Linkage = journals.InvoiceLink(journals.InvoiceSales, 8)
	in.UniqueLinkage = true

	entry, err := f.journals.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, journals.InvoiceSales, entry.Lines[0].InvoiceType)

	_, err = f.journals.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrSourceAlreadyLinked)

	found, ok, err := f.journals.FindByLinkage(ctx, in.Linkage)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.ID, found.ID)
}

func TestLedgerSyncFailureRollsBackAndAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	monitor := ledger.NewSyncMonitor(2, time.Minute)
	f.journals.WithSyncMonitor(monitor)
	f.store.FailLedgerSync(errors.New("ledger_entries unavailable"))

	for i := 0; i < 2; i++ {
		_, err := f.journals.Create(ctx, cashSale("INV-9"))
		require.Error(t, err)
	}
	require.Zero(t, f.store.EntryCount())
	require.Empty(t, f.store.AuditRecords())

	status := f.journals.SyncStatus()
	require.Equal(t, 2, status.ConsecutiveFailures)
	require.EqualValues(t, 1, status.Alerts)

	f.store.FailLedgerSync(nil)
	_, err := f.journals.Create(ctx, cashSale("INV-9"))
	require.NoError(t, err)
	require.Zero(t, f.journals.SyncStatus().ConsecutiveFailures)
}

func TestRebuildReplaysProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.journals.Create(ctx, cashSale("INV-10"))
	require.NoError(t, err)
	draft := cashSale("INV-11")
	draft.AsDraft = true
	_, err = f.journals.Create(ctx, draft)
	require.NoError(t, err)

	projector := ledger.NewProjector(f.store.Ledger(), nil, nil)
	first, err := projector.Rebuild(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, first.Deleted)
	require.Equal(t, 3, first.Inserted)

	second, err := projector.Rebuild(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Inserted, second.Inserted)

	drift, err := projector.Drift(ctx)
	require.NoError(t, err)
	require.Empty(t, drift)
}

// linkageTxRepo records which transaction flavour each mutation ran in.
type linkageTxRepo struct {
	journals.Repository
	serializable int
}

func (r *linkageTxRepo) WithSerializableTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	r.serializable++
	return r.Repository.WithSerializableTx(ctx, fn)
}

func TestUniqueLinkageRunsSerializable(t *testing.T) {
	store := memstore.New().WithNow(clock)
	require.NoError(t, store.Seed(context.Background(), nil, 2025))
	repo := &linkageTxRepo{Repository: store.Journals()}
	svc := journals.NewService(repo, nil)
	svc.WithNow(clock)
	ctx := context.Background()

	_, err := svc.Create(ctx, cashSale("INV-20"))
	require.NoError(t, err)
	require.Equal(t, 0, repo.serializable)

	in := cashSale("INV-21")
	in.Linkage = journals.InvoiceLink(journals.InvoiceSales, 21)
	in.UniqueLinkage = true
	first, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, repo.serializable)

	// Same document under another reference still resolves to the first entry.
	in.SourceRef = ""
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrSourceAlreadyLinked)
	require.Equal(t, 2, repo.serializable)
	found, ok, err := svc.FindByLinkage(ctx, in.Linkage)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first.ID, found.ID)
}

func TestRandomEntriesKeepTrialBalanceTied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	codes := []string{"1112", "1121", "1141", "1161", "2111", "2141", "4111", "5310"}
	rng := rand.New(rand.NewPCG(2025, 6))

	for i := range 60 {
		n := 2 + rng.IntN(4)
		lines := make([]journals.LineInput, 0, n)
		total := decimal.Zero
		for range n - 1 {
			cents := decimal.New(int64(1+rng.IntN(500000)), -2)
			total = total.Add(cents)
			lines = append(lines, journals.LineInput{AccountCode: codes[rng.IntN(len(codes))], Debit: cents})
		}
		lines = append(lines, journals.LineInput{AccountCode: codes[rng.IntN(len(codes))], Credit: total})
		if rng.IntN(2) == 0 {
			for j := range lines {
				lines[j].Debit, lines[j].Credit = lines[j].Credit, lines[j].Debit
			}
		}
		entry, err := f.journals.Create(ctx, journals.CreateInput{
			Date:        saleDate.AddDate(0, 0, -rng.IntN(150)),
			BranchCode:  "RUH-01",
			Description: "generated",
			Kind:        journals.KindManual,
			SourceRef:   fmt.Sprintf("GEN-%d", i),
			Lines:       lines,
		})
		require.NoError(t, err)
		require.True(t, entry.TotalDebit.Equal(entry.TotalCredit))

		if rng.IntN(5) == 0 {
			_, err := f.journals.Reverse(ctx, entry.ID, 1)
			require.NoError(t, err)
		}
	}

	tb, err := f.ledger.TrialBalance(ctx, saleDate)
	require.NoError(t, err)
	var debit, credit decimal.Decimal
	for _, row := range tb {
		debit = debit.Add(row.Debit)
		credit = credit.Add(row.Credit)
	}
	require.True(t, debit.Equal(credit), "debit %s credit %s", debit, credit)

	var projected decimal.Decimal
	for _, row := range f.store.LedgerRows() {
		projected = projected.Add(row.Debit).Sub(row.Credit)
	}
	require.True(t, projected.IsZero(), "projection nets to %s", projected)
}

func TestListRejectsBadPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.journals.Create(ctx, cashSale("INV-30"))
	require.NoError(t, err)

	entries, err := f.store.Journals().List(ctx, journals.ListFilter{Offset: -1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	r := chi.NewRouter()
	r.Route("/journals", journals.NewHandler(nil, f.journals).MountRoutes)
	for query, want := range map[string]int{
		"offset=-1":  http.StatusBadRequest,
		"offset=abc": http.StatusBadRequest,
		"limit=-5":   http.StatusBadRequest,
		"offset=0":   http.StatusOK,
		"limit=10":   http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journals?"+query, nil))
		require.Equal(t, want, rec.Code, query)
	}
}
