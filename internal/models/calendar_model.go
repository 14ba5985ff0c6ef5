package models

import "time"

// Fixed column layout of the content calendar tabs. Columns C-H carry report
// metadata the dispatcher never reads.
const (
	ColStatus    = 0
	ColScheduled = 1
	ColText      = 8
)

const (
	RowStatusReady  = "Ready"
	RowStatusPosted = "Posted"
)

// CalendarRow is one data row of a calendar tab. Index is the 1-based sheet
// row, so the first row under the header is 2.
type CalendarRow struct {
	Tab       string
	Index     int
	Status    string
	Scheduled string
	Text      string
}

// DispatchRecord is one posting attempt in the audit log. The log is never
// consulted when deciding whether a row should post; the status column is the
// only gate.
type DispatchRecord struct {
	ID           int64     `db:"id" json:"id"`
	BatchID      string    `db:"batch_id" json:"batch_id"`
	Tab          string    `db:"tab" json:"tab"`
	RowIndex     int       `db:"row_index" json:"row_index"`
	PostText     string    `db:"post_text" json:"post_text"`
	Posted       bool      `db:"posted" json:"posted"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
