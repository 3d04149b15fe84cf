package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	_ "github.com/odyssey-erp/gl-engine/testing"
)

type stubTimelineRepo struct {
	rows       []TimelineRow
	lastOffset int
	lastLimit  int
	lastFilter TimelineFilters
}

func (s *stubTimelineRepo) ListForJournal(ctx context.Context, journalID int64) ([]Record, error) {
	return []Record{{JournalID: journalID, Action: ActionCreate}}, nil
}

func (s *stubTimelineRepo) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	s.lastFilter, s.lastOffset, s.lastLimit = filters, offset, limit
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	if offset > len(s.rows) {
		return nil, nil
	}
	return s.rows[offset:end], nil
}

func (s *stubTimelineRepo) TimelineAll(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	s.lastFilter = filters
	return s.rows, nil
}

func mockRow(ts string, action Action, journal int64) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	user := int64(7)
	return TimelineRow{At: at, UserID: &user, Action: action, JournalID: journal, EntryNumber: "JE-MAN-20250615"}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		mockRow("2025-03-10T10:00:00Z", ActionPost, 1),
		mockRow("2025-03-09T09:00:00Z", ActionCreate, 1),
		mockRow("2025-03-08T08:00:00Z", ActionCreate, 2),
	}}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected next page, got %+v", result.Paging)
	}
	if repo.lastLimit != 3 || repo.lastOffset != 0 {
		t.Fatalf("expected limit 3 offset 0, got %d/%d", repo.lastLimit, repo.lastOffset)
	}

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 1 || result.Paging.HasNext || result.Paging.PrevPage != 1 {
		t.Fatalf("unexpected second page %+v", result)
	}
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)
	if _, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastLimit != maxPageSize+1 {
		t.Fatalf("expected clamped limit %d, got %d", maxPageSize+1, repo.lastLimit)
	}
}

func TestExporterWriteCSV(t *testing.T) {
	out, err := NewExporter().WriteCSV([]TimelineRow{mockRow("2025-03-10T10:00:00Z", ActionPost, 9)})
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	if lines[1] != "2025-03-10T10:00:00Z,7,post,9,JE-MAN-20250615" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestNewRecordMarshalsSnapshots(t *testing.T) {
	user := int64(3)
	rec, err := NewRecord(5, ActionRevertToDraft, &user, map[string]string{"status": "posted"}, map[string]string{"status": "draft"}, time.Now())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if string(rec.Before) != `{"status":"posted"}` || string(rec.After) != `{"status":"draft"}` {
		t.Fatalf("unexpected snapshots %s / %s", rec.Before, rec.After)
	}
	rec, err = NewRecord(5, ActionPrint, nil, nil, nil, time.Now())
	if err != nil || rec.Before != nil || rec.After != nil {
		t.Fatalf("expected empty snapshots, got %v %v (%v)", rec.Before, rec.After, err)
	}
}
