package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/gl-engine/internal/audit"
	_ "github.com/odyssey-erp/gl-engine/testing"
)

type stubTimelineService struct {
	result      audit.Result
	exportRows  []audit.TimelineRow
	records     []audit.Record
	lastFilters audit.TimelineFilters
}

func (s *stubTimelineService) ListForJournal(ctx context.Context, journalID int64) ([]audit.Record, error) {
	return s.records, nil
}

func (s *stubTimelineService) Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error) {
	s.lastFilters = filters
	return s.result, nil
}

func (s *stubTimelineService) Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.lastFilters = filters
	return s.exportRows, nil
}

func newRouter(svc *stubTimelineService) (http.Handler, *Handler) {
	h := NewHandler(nil, svc, audit.NewExporter())
	h.now = func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Route("/audit", h.MountRoutes)
	return r, h
}

func TestTimelineDefaultsToLastWeek(t *testing.T) {
	svc := &stubTimelineService{}
	router, _ := newRouter(svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline?action=post&journal_id=4", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := svc.lastFilters.From.Format("2006-01-02"); got != "2025-06-23" {
		t.Fatalf("expected default from 2025-06-23, got %s", got)
	}
	if svc.lastFilters.Action != "post" || svc.lastFilters.JournalID != 4 {
		t.Fatalf("unexpected filters %+v", svc.lastFilters)
	}
}

func TestTimelineRejectsInvertedRange(t *testing.T) {
	router, _ := newRouter(&stubTimelineService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline?from=2025-06-10&to=2025-06-01", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportWritesCSV(t *testing.T) {
	svc := &stubTimelineService{exportRows: []audit.TimelineRow{{
		At: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), Action: audit.ActionPost, JournalID: 3, EntryNumber: "JE-SAL-10",
	}}}
	router, _ := newRouter(svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/timeline.csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "JE-SAL-10") {
		t.Fatalf("expected entry number in csv, got %q", rec.Body.String())
	}
}

func TestJournalHistory(t *testing.T) {
	svc := &stubTimelineService{records: []audit.Record{{ID: 1, JournalID: 8, Action: audit.ActionCreate}}}
	router, _ := newRouter(svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/journals/8", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"action":"create"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
