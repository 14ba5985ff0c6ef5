package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
	"github.com/emberfeed/emberfeed/internal/repository"
)

// RowResult is the outcome of one posting attempt, inspected by the run loop.
// A row's failure never stops the rows after it.
type RowResult struct {
	Tab      string
	RowIndex int
	Posted   bool
	Err      error
}

type DispatchService interface {
	Run(ctx context.Context, today time.Time) ([]RowResult, error)
}

type dispatchService struct {
	cfg     config.Config
	sheets  SheetsService
	bluesky BlueskyService
	history repository.DispatchHistoryRepository
}

func NewDispatchService(
	cfg config.Config,
	sheets SheetsService,
	bluesky BlueskyService,
	history repository.DispatchHistoryRepository) DispatchService {
	return &dispatchService{
		cfg:     cfg,
		sheets:  sheets,
		bluesky: bluesky,
		history: history,
	}
}

// Today normalizes a clock reading to midnight. Computed once at the start of
// a run and threaded into the predicate.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Run scans the configured calendar tabs in order and posts every row that is
// due, marking each posted row's status cell. Authentication failure aborts
// the whole run; per-row failures are logged and recorded, and the loop
// continues.
func (s *dispatchService) Run(ctx context.Context, today time.Time) ([]RowResult, error) {
	if _, err := s.bluesky.EnsureSession(ctx); err != nil {
		return nil, fmt.Errorf("bluesky authentication failed: %w", err)
	}

	batchID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	var results []RowResult
	for _, tab := range s.cfg.CalendarTabs {
		log.Printf("Searching %q for rows ready to post", tab)

		values, err := s.sheets.ReadTab(ctx, tab)
		if err != nil {
			return results, fmt.Errorf("reading tab %q: %w", tab, err)
		}

		// Row 1 is the header; sheet rows are 1-based.
		for i := 1; i < len(values); i++ {
			row := calendarRow(tab, i+1, values[i])
			if !ShouldPost(row, today) {
				continue
			}

			log.Printf("Posting row %d of %q", row.Index, tab)
			result := s.postRow(ctx, row)
			if result.Err != nil {
				slog.Error(fmt.Sprintf("row %d of %q: %v", result.RowIndex, tab, result.Err))
			}

			s.record(ctx, batchID, row, result)
			results = append(results, result)
		}
	}

	return results, nil
}

// ShouldPost reports whether a row is due: non-blank text, status exactly
// "Ready", and a scheduled date on or before today at day granularity. Rows
// whose date cell cannot be parsed never qualify.
func ShouldPost(row models.CalendarRow, today time.Time) bool {
	if strings.TrimSpace(row.Text) == "" {
		return false
	}
	if row.Status != models.RowStatusReady {
		return false
	}

	scheduled, ok := parseScheduledDate(row.Scheduled)
	if !ok {
		return false
	}

	// Compare calendar days, not instants: the cell parses as midnight UTC
	// while today carries the server's zone.
	sy, sm, sd := scheduled.Date()
	ty, tm, td := today.Date()
	if sy != ty {
		return sy < ty
	}
	if sm != tm {
		return sm < tm
	}
	return sd <= td
}

func (s *dispatchService) postRow(ctx context.Context, row models.CalendarRow) RowResult {
	result := RowResult{Tab: row.Tab, RowIndex: row.Index}

	if _, err := s.bluesky.CreatePost(ctx, row.Text, time.Now()); err != nil {
		result.Err = err
		return result
	}
	result.Posted = true

	if err := s.sheets.MarkPosted(ctx, row.Tab, row.Index); err != nil {
		// The post went out but the cell still says "Ready", so the row will
		// post again next run. Recorded, not repaired.
		result.Err = err
	}

	return result
}

func (s *dispatchService) record(ctx context.Context, batchID string, row models.CalendarRow, result RowResult) {
	if s.history == nil {
		return
	}

	dr := models.DispatchRecord{
		BatchID:  batchID,
		Tab:      row.Tab,
		RowIndex: row.Index,
		PostText: row.Text,
		Posted:   result.Posted,
	}
	if result.Err != nil {
		dr.ErrorMessage = result.Err.Error()
	}

	if _, err := s.history.Create(ctx, &dr); err != nil {
		slog.Error(fmt.Sprintf("saving dispatch history for row %d of %q: %v", row.Index, row.Tab, err))
	}
}

func calendarRow(tab string, index int, cells []interface{}) models.CalendarRow {
	return models.CalendarRow{
		Tab:       tab,
		Index:     index,
		Status:    cell(cells, models.ColStatus),
		Scheduled: cell(cells, models.ColScheduled),
		Text:      cell(cells, models.ColText),
	}
}

func cell(cells []interface{}, col int) string {
	if col >= len(cells) || cells[col] == nil {
		return ""
	}
	return fmt.Sprint(cells[col])
}

// scheduledDateLayouts covers the ISO form the report generator writes and
// the localized forms Sheets renders for date-formatted cells.
var scheduledDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"2006/01/02",
}

func parseScheduledDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range scheduledDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
