package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
	"github.com/emberfeed/emberfeed/internal/transfer"
)

type fakeSheets struct {
	tabs     map[string][][]interface{}
	appended map[string][][]interface{}
	marked   []string
	markErr  error
}

func (f *fakeSheets) ReadTab(ctx context.Context, tab string) ([][]interface{}, error) {
	values, ok := f.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("no such tab %q", tab)
	}
	return values, nil
}

func (f *fakeSheets) MarkPosted(ctx context.Context, tab string, rowIndex int) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, fmt.Sprintf("%s!A%d", tab, rowIndex))
	f.tabs[tab][rowIndex-1][models.ColStatus] = models.RowStatusPosted
	return nil
}

func (f *fakeSheets) AppendRows(ctx context.Context, tab string, rows [][]interface{}) error {
	if f.appended == nil {
		f.appended = make(map[string][][]interface{})
	}
	f.appended[tab] = append(f.appended[tab], rows...)
	return nil
}

type fakePoster struct {
	sessionErr error
	postErr    error
	posts      []string
}

func (f *fakePoster) EnsureSession(ctx context.Context) (*transfer.CreateSessionResponse, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &transfer.CreateSessionResponse{AccessJwt: "jwt", Did: "did:plc:test"}, nil
}

func (f *fakePoster) CreatePost(ctx context.Context, text string, createdAt time.Time) (*transfer.CreateRecordResponse, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posts = append(f.posts, text)
	return &transfer.CreateRecordResponse{Uri: "at://did:plc:test/app.bsky.feed.post/1"}, nil
}

type fakeHistory struct {
	records []*models.DispatchRecord
}

func (f *fakeHistory) Create(ctx context.Context, dr *models.DispatchRecord) (int64, error) {
	f.records = append(f.records, dr)
	return int64(len(f.records)), nil
}

func (f *fakeHistory) GetByID(ctx context.Context, id int64) (*models.DispatchRecord, error) {
	return nil, nil
}

func (f *fakeHistory) ListRecent(ctx context.Context, limit int) ([]*models.DispatchRecord, error) {
	return f.records, nil
}

func (f *fakeHistory) ListByBatchID(ctx context.Context, batchID string) ([]*models.DispatchRecord, error) {
	return f.records, nil
}

func row(status, scheduled, text string) []interface{} {
	return []interface{}{status, scheduled, "", "", "", "", "", "", text}
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestShouldPost(t *testing.T) {
	today := day("2024-01-02")

	tests := []struct {
		name string
		row  models.CalendarRow
		want bool
	}{
		{
			name: "due today",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "2024-01-02", Text: "Hello world"},
			want: true,
		},
		{
			name: "past due",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "2023-11-30", Text: "Hello world"},
			want: true,
		},
		{
			name: "scheduled tomorrow",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "2024-01-03", Text: "Hello world"},
			want: false,
		},
		{
			name: "already posted",
			row:  models.CalendarRow{Status: "Posted", Scheduled: "2024-01-01", Text: "Hello world"},
			want: false,
		},
		{
			name: "status not exactly Ready",
			row:  models.CalendarRow{Status: "ready", Scheduled: "2024-01-01", Text: "Hello world"},
			want: false,
		},
		{
			name: "empty content",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "2024-01-01", Text: ""},
			want: false,
		},
		{
			name: "blank content",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "2024-01-01", Text: "   "},
			want: false,
		},
		{
			name: "unparsable date",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "soon", Text: "Hello world"},
			want: false,
		},
		{
			name: "slash date format",
			row:  models.CalendarRow{Status: "Ready", Scheduled: "1/2/2024", Text: "Hello world"},
			want: true,
		},
		{
			name: "empty row",
			row:  models.CalendarRow{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldPost(tt.row, today))
		})
	}
}

func TestShouldPostComparesCalendarDaysAcrossZones(t *testing.T) {
	// Ahead of UTC: local midnight is before the cell's midnight-UTC instant,
	// but a row scheduled for today is still due today.
	ahead := time.FixedZone("UTC+13", 13*60*60)
	today := Today(time.Date(2024, 1, 2, 9, 0, 0, 0, ahead))

	due := models.CalendarRow{Status: "Ready", Scheduled: "2024-01-02", Text: "Hello world"}
	assert.True(t, ShouldPost(due, today))

	tomorrow := models.CalendarRow{Status: "Ready", Scheduled: "2024-01-03", Text: "Hello world"}
	assert.False(t, ShouldPost(tomorrow, today))

	behind := time.FixedZone("UTC-11", -11*60*60)
	today = Today(time.Date(2024, 1, 2, 9, 0, 0, 0, behind))

	assert.True(t, ShouldPost(due, today))
	assert.False(t, ShouldPost(tomorrow, today))
}

func newTestDispatcher(sheets *fakeSheets, poster *fakePoster, history *fakeHistory) DispatchService {
	cfg := config.Config{CalendarTabs: []string{"Peak Share", "Peak Generation"}}
	return NewDispatchService(cfg, sheets, poster, history)
}

func TestRunPostsDueRowAndMarksIt(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "Hello world"),
			},
			"Peak Generation": {
				row("Status", "Date", "Text"),
			},
		},
	}
	poster := &fakePoster{}
	history := &fakeHistory{}

	results, err := newTestDispatcher(sheets, poster, history).Run(context.Background(), day("2024-01-02"))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Posted)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].RowIndex)

	assert.Equal(t, []string{"Hello world"}, poster.posts)
	assert.Equal(t, []string{"Peak Share!A2"}, sheets.marked)

	require.Len(t, history.records, 1)
	assert.True(t, history.records[0].Posted)
	assert.Equal(t, "Hello world", history.records[0].PostText)
}

func TestRunSkipsRowsThatAreNotDue(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Posted", "2024-01-01", "Already out"),
				row("Ready", "2024-02-01", "Too early"),
				row("Ready", "2024-01-01", ""),
			},
			"Peak Generation": {
				row("Status", "Date", "Text"),
			},
		},
	}
	poster := &fakePoster{}

	results, err := newTestDispatcher(sheets, poster, &fakeHistory{}).Run(context.Background(), day("2024-01-02"))
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Empty(t, poster.posts)
	assert.Empty(t, sheets.marked)
}

func TestRunContinuesAfterRowFailure(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "First"),
			},
			"Peak Generation": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "Second"),
			},
		},
	}
	poster := &fakePoster{postErr: errors.New("rate limited")}
	history := &fakeHistory{}

	results, err := newTestDispatcher(sheets, poster, history).Run(context.Background(), day("2024-01-02"))
	require.NoError(t, err)

	// Both rows attempted; neither marked.
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Posted)
		assert.Error(t, r.Err)
	}
	assert.Equal(t, 2, results[0].RowIndex)
	assert.Empty(t, sheets.marked)
	assert.Equal(t, "Ready", sheets.tabs["Peak Share"][1][models.ColStatus])

	require.Len(t, history.records, 2)
	assert.Equal(t, "rate limited", history.records[0].ErrorMessage)
}

func TestRunIsIdempotentAcrossRuns(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "Hello world"),
			},
			"Peak Generation": {
				row("Status", "Date", "Text"),
			},
		},
	}
	poster := &fakePoster{}
	dispatcher := newTestDispatcher(sheets, poster, &fakeHistory{})

	today := day("2024-01-02")

	first, err := dispatcher.Run(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := dispatcher.Run(context.Background(), today)
	require.NoError(t, err)

	assert.Empty(t, second)
	assert.Len(t, poster.posts, 1)
}

func TestRunAbortsWhenAuthenticationFails(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "Hello world"),
			},
		},
	}
	poster := &fakePoster{sessionErr: errors.New("invalid credentials")}

	results, err := newTestDispatcher(sheets, poster, &fakeHistory{}).Run(context.Background(), day("2024-01-02"))

	require.Error(t, err)
	assert.Nil(t, results)
	assert.Empty(t, poster.posts)
}

func TestRunRecordsFailedStatusWrite(t *testing.T) {
	sheets := &fakeSheets{
		tabs: map[string][][]interface{}{
			"Peak Share": {
				row("Status", "Date", "Text"),
				row("Ready", "2024-01-01", "Hello world"),
			},
			"Peak Generation": {
				row("Status", "Date", "Text"),
			},
		},
		markErr: errors.New("write quota exceeded"),
	}
	poster := &fakePoster{}
	history := &fakeHistory{}

	results, err := newTestDispatcher(sheets, poster, history).Run(context.Background(), day("2024-01-02"))
	require.NoError(t, err)

	// The post went out but the row stayed "Ready"; the attempt is recorded
	// with both facts.
	require.Len(t, results, 1)
	assert.True(t, results[0].Posted)
	assert.Error(t, results[0].Err)
	assert.Equal(t, "Ready", sheets.tabs["Peak Share"][1][models.ColStatus])

	require.Len(t, history.records, 1)
	assert.True(t, history.records[0].Posted)
	assert.Equal(t, "write quota exceeded", history.records[0].ErrorMessage)
}

func TestTodayNormalizesToMidnight(t *testing.T) {
	now := time.Date(2024, 1, 2, 17, 45, 30, 12345, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Today(now))
}

func TestCalendarRowHandlesShortRows(t *testing.T) {
	r := calendarRow("Peak Share", 2, []interface{}{"Ready", "2024-01-01"})
	assert.Equal(t, "Ready", r.Status)
	assert.Equal(t, "2024-01-01", r.Scheduled)
	assert.Equal(t, "", r.Text)
}
