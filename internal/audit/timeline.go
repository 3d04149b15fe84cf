package audit

import "time"

// TimelineFilters menampung filter dasar untuk audit timeline.
type TimelineFilters struct {
	From      time.Time
	To        time.Time
	JournalID int64
	UserID    int64
	Action    string
	Page      int
	PageSize  int
}

// TimelineRow mewakili satu baris audit timeline.
type TimelineRow struct {
	At          time.Time `json:"at"`
	UserID      *int64    `json:"user_id,omitempty"`
	Action      Action    `json:"action"`
	JournalID   int64     `json:"journal_id"`
	EntryNumber string    `json:"entry_number,omitempty"`
}

// PagingInfo menyimpan metadata pagination sederhana.
type PagingInfo struct {
	Page     int  `json:"page"`
	HasNext  bool `json:"has_next"`
	PageSize int  `json:"page_size"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result membungkus hasil timeline dengan informasi paging.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}
