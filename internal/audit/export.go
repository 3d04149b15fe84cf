package audit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// Exporter menulis ekspor CSV audit timeline.
type Exporter struct{}

// NewExporter membuat exporter CSV.
func NewExporter() *Exporter {
	return &Exporter{}
}

// WriteCSV encodes rows with a header line.
func (e *Exporter) WriteCSV(rows []TimelineRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"at", "user_id", "action", "journal_id", "entry_number"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		user := ""
		if row.UserID != nil {
			user = strconv.FormatInt(*row.UserID, 10)
		}
		record := []string{
			row.At.UTC().Format(time.RFC3339),
			user,
			string(row.Action),
			strconv.FormatInt(row.JournalID, 10),
			row.EntryNumber,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
