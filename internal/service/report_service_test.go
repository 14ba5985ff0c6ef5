package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
)

func TestMilestoneText(t *testing.T) {
	prevDate := day("2023-05-01")
	record := models.NewPeakRecord{
		CountryName:      "Canada",
		FuelType:         "Wind",
		Date:             day("2024-04-01"),
		Value:            10.35,
		PreviousPeak:     9.2,
		PreviousPeakDate: &prevDate,
	}

	text := MilestoneText(record, models.MetricShare)
	assert.Equal(t,
		"In April 2024, Canada hit a new electricity record for generation share of 10.35% in wind power. "+
			"This exceeds the previous peak of 9.2% set in May 2023.",
		text)

	text = MilestoneText(record, models.MetricGeneration)
	assert.Contains(t, text, "total generation of 10.35 TWh")
}

func TestMilestoneTextWithoutPreviousPeak(t *testing.T) {
	record := models.NewPeakRecord{
		CountryName: "Canada",
		FuelType:    "Solar",
		Date:        day("2024-04-01"),
		Value:       1.5,
	}

	text := MilestoneText(record, models.MetricGeneration)
	assert.Contains(t, text, "set in unknown date")
}

func TestComposeMilestonesSkipsAggregateFuels(t *testing.T) {
	stats := NewElectricityStats([]models.GenerationRecord{
		rec("2024-11-01", "Wind", 2.0, 8.0),
		rec("2024-12-01", "Wind", 3.0, 9.0),
		rec("2024-11-01", "Other fossil", 1.0, 4.0),
		rec("2024-12-01", "Other fossil", 2.0, 6.0),
	})

	svc := NewReportService(config.Config{}, &fakeSheets{})
	milestones := svc.ComposeMilestones("can", stats)

	// Wind set records on both metrics; "Other fossil" did too but is skipped.
	require.Len(t, milestones, 2)
	for _, m := range milestones {
		assert.Equal(t, "Wind", m.Record.FuelType)
		assert.Equal(t, "Canada", m.Record.CountryName)
	}
	assert.Equal(t, "Peak Share", milestones[0].Tab)
	assert.Equal(t, "Peak Generation", milestones[1].Tab)
}

func TestComposeMilestonesEmptyStats(t *testing.T) {
	svc := NewReportService(config.Config{}, &fakeSheets{})
	assert.Empty(t, svc.ComposeMilestones("CAN", NewElectricityStats(nil)))
}

func TestAppendToCalendarStaggersDates(t *testing.T) {
	sheets := &fakeSheets{tabs: map[string][][]interface{}{}}
	svc := NewReportService(config.Config{}, sheets)

	milestones := []Milestone{
		{
			Tab:    "Peak Share",
			Metric: models.MetricShare,
			Record: models.NewPeakRecord{CountryName: "Canada", FuelType: "Wind", Date: day("2024-12-01"), Value: 9.0},
			Text:   "first",
		},
		{
			Tab:    "Peak Share",
			Metric: models.MetricShare,
			Record: models.NewPeakRecord{CountryName: "Canada", FuelType: "Solar", Date: day("2024-12-01"), Value: 3.0},
			Text:   "second",
		},
	}

	err := svc.AppendToCalendar(context.Background(), day("2025-01-10"), milestones)
	require.NoError(t, err)

	rows := sheets.appended["Peak Share"]
	require.Len(t, rows, 2)

	assert.Equal(t, models.RowStatusReady, rows[0][models.ColStatus])
	assert.Equal(t, "2025-01-11", rows[0][models.ColScheduled])
	assert.Equal(t, "first", rows[0][models.ColText])

	assert.Equal(t, "2025-01-12", rows[1][models.ColScheduled])
	assert.Equal(t, "second", rows[1][models.ColText])
}
