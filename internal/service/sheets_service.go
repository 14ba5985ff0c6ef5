package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
)

type SheetsService interface {
	ReadTab(ctx context.Context, tab string) ([][]interface{}, error)
	MarkPosted(ctx context.Context, tab string, rowIndex int) error
	AppendRows(ctx context.Context, tab string, rows [][]interface{}) error
}

type sheetsService struct {
	spreadsheetID string
	google        *sheets.Service
}

func NewSheetsService(ctx context.Context, cfg config.Config) (SheetsService, error) {
	data, err := os.ReadFile(cfg.GoogleCredentials)
	if err != nil {
		return nil, fmt.Errorf("unable to read Google credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse Google credentials: %w", err)
	}

	client, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	return &sheetsService{
		spreadsheetID: cfg.SpreadsheetID,
		google:        client,
	}, nil
}

// ReadTab fetches the tab's full rectangular value range in one call, header
// row included.
func (s *sheetsService) ReadTab(ctx context.Context, tab string) ([][]interface{}, error) {
	area := fmt.Sprintf("%s!A1:I", quoteTab(tab))

	response, err := s.google.Spreadsheets.Values.Get(s.spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("unable to read %q: %w", tab, err)
	}

	return response.Values, nil
}

// MarkPosted overwrites the status cell of a single row. rowIndex is the
// 1-based sheet row.
func (s *sheetsService) MarkPosted(ctx context.Context, tab string, rowIndex int) error {
	area := fmt.Sprintf("%s!A%d", quoteTab(tab), rowIndex)

	values := sheets.ValueRange{
		Range:  area,
		Values: [][]interface{}{{models.RowStatusPosted}},
	}

	_, err := s.google.Spreadsheets.Values.Update(s.spreadsheetID, area, &values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("unable to update %s: %w", area, err)
	}

	return nil
}

func (s *sheetsService) AppendRows(ctx context.Context, tab string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	area := fmt.Sprintf("%s!A1:I", quoteTab(tab))

	values := sheets.ValueRange{
		Values: rows,
	}

	_, err := s.google.Spreadsheets.Values.Append(s.spreadsheetID, area, &values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("unable to append to %q: %w", tab, err)
	}

	return nil
}

// quoteTab wraps a tab name for use in an A1 range. Names with spaces must be
// quoted, and embedded quotes doubled.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
