package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
)

// Milestone pairs a generated post text with the calendar tab it belongs on.
type Milestone struct {
	Tab    string
	Record models.NewPeakRecord
	Metric models.Metric
	Text   string
}

type ReportService interface {
	ComposeMilestones(countryCode string, stats *ElectricityStats) []Milestone
	AppendToCalendar(ctx context.Context, today time.Time, milestones []Milestone) error
}

type reportService struct {
	cfg    config.Config
	sheets SheetsService
}

func NewReportService(cfg config.Config, sheets SheetsService) ReportService {
	return &reportService{cfg: cfg, sheets: sheets}
}

// Aggregate pseudo-fuels never make interesting posts.
var skipFuelTypes = map[string]bool{
	"Other fossil":     true,
	"Other renewables": true,
	"Net imports":      true,
}

var metricTabs = []struct {
	metric models.Metric
	tab    string
}{
	{models.MetricShare, "Peak Share"},
	{models.MetricGeneration, "Peak Generation"},
}

// ComposeMilestones turns the latest month's new records into post texts, one
// per fuel type per metric.
func (r *reportService) ComposeMilestones(countryCode string, stats *ElectricityStats) []Milestone {
	countryCode = strings.ToUpper(countryCode)
	countryName := models.CountryNames[countryCode]
	if countryName == "" {
		countryName = countryCode
	}

	latest := stats.LatestDate()
	if latest.IsZero() {
		return nil
	}

	var milestones []Milestone
	for _, mt := range metricTabs {
		for _, record := range stats.NewRecordsInLatestMonth(latest, mt.metric, countryCode, countryName) {
			if skipFuelTypes[record.FuelType] {
				continue
			}
			milestones = append(milestones, Milestone{
				Tab:    mt.tab,
				Record: record,
				Metric: mt.metric,
				Text:   MilestoneText(record, mt.metric),
			})
		}
	}

	return milestones
}

// MilestoneText renders the post sentence for a new record.
func MilestoneText(record models.NewPeakRecord, metric models.Metric) string {
	units := metric.Unit()
	if units != "%" {
		units = " " + units
	}

	previousDate := "unknown date"
	if record.PreviousPeakDate != nil {
		previousDate = record.PreviousPeakDate.Format("January 2006")
	}

	return fmt.Sprintf(
		"In %s, %s hit a new electricity record for %s of %v%s in %s power. This exceeds the previous peak of %v%s set in %s.",
		record.Date.Format("January 2006"),
		record.CountryName,
		metric.Label(),
		record.Value,
		units,
		strings.ToLower(record.FuelType),
		record.PreviousPeak,
		units,
		previousDate,
	)
}

// AppendToCalendar writes milestones to their tabs as "Ready" rows, scheduled
// one per day per tab starting tomorrow.
func (r *reportService) AppendToCalendar(ctx context.Context, today time.Time, milestones []Milestone) error {
	rowsByTab := make(map[string][][]interface{})

	for _, m := range milestones {
		scheduled := today.AddDate(0, 0, 1+len(rowsByTab[m.Tab]))
		row := []interface{}{
			models.RowStatusReady,
			scheduled.Format("2006-01-02"),
			m.Record.CountryName,
			m.Record.FuelType,
			string(m.Metric),
			m.Record.Date.Format("2006-01"),
			m.Record.Value,
			m.Record.PreviousPeak,
			m.Text,
		}
		rowsByTab[m.Tab] = append(rowsByTab[m.Tab], row)
	}

	for _, mt := range metricTabs {
		rows := rowsByTab[mt.tab]
		if len(rows) == 0 {
			continue
		}
		if err := r.sheets.AppendRows(ctx, mt.tab, rows); err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("appended %d rows to %q", len(rows), mt.tab))
	}

	return nil
}
