package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// GenerationRecord is a single monthly electricity generation entry from the
// Ember API.
type GenerationRecord struct {
	Country           string
	CountryCode       string
	IsAggregateEntity bool
	Date              time.Time
	FuelType          string
	IsAggregateSeries bool
	GenerationTWh     *float64
	ShareOfGeneration *float64
	IsLatestMonth     bool
}

type generationEntry struct {
	Entity            string   `json:"entity"`
	EntityCode        string   `json:"entity_code"`
	IsAggregateEntity bool     `json:"is_aggregate_entity"`
	Date              string   `json:"date"`
	Series            string   `json:"series"`
	IsAggregateSeries bool     `json:"is_aggregate_series"`
	GenerationTWh     *float64 `json:"generation_twh"`
	ShareOfGeneration *float64 `json:"share_of_generation_pct"`
}

func (r *GenerationRecord) UnmarshalJSON(data []byte) error {
	var entry generationEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	if entry.Date == "" {
		return fmt.Errorf("missing required 'date' field in entry")
	}
	parsed, err := time.Parse("2006-01-02", entry.Date)
	if err != nil {
		return fmt.Errorf("invalid date format %q in entry: %w", entry.Date, err)
	}

	r.Country = entry.Entity
	r.CountryCode = entry.EntityCode
	r.IsAggregateEntity = entry.IsAggregateEntity
	r.Date = parsed
	r.FuelType = entry.Series
	r.IsAggregateSeries = entry.IsAggregateSeries
	r.GenerationTWh = entry.GenerationTWh
	r.ShareOfGeneration = entry.ShareOfGeneration
	r.IsLatestMonth = false
	return nil
}

// Metric selects which of the two monthly values an analysis runs over.
type Metric string

const (
	MetricShare      Metric = "share_of_generation_pct"
	MetricGeneration Metric = "generation_twh"
)

func (m Metric) Value(r *GenerationRecord) *float64 {
	switch m {
	case MetricShare:
		return r.ShareOfGeneration
	case MetricGeneration:
		return r.GenerationTWh
	}
	return nil
}

func (m Metric) Unit() string {
	if m == MetricShare {
		return "%"
	}
	return "TWh"
}

func (m Metric) Label() string {
	if m == MetricShare {
		return "generation share"
	}
	return "total generation"
}

// NewPeakRecord describes a fuel type that set a new record in the latest month.
type NewPeakRecord struct {
	CountryCode      string
	CountryName      string
	FuelType         string
	Date             time.Time
	Value            float64
	PreviousPeak     float64
	PreviousPeakDate *time.Time
}

// FuelMix is a per-fuel snapshot of the latest month with growth figures.
// Growth fields are nil when the comparison period has no data.
type FuelMix struct {
	FuelType           string
	GenCurrentMonth    float64
	ShareCurrentMonth  float64
	GrowthCurrentMonth *float64
	GenLast12Months    float64
	GrowthLast12Months *float64
}

// YearlyAggregation is a calendar-year generation total. IsPartial marks years
// with fewer than twelve reported months.
type YearlyAggregation struct {
	Year          int
	GenerationTWh float64
	IsPartial     bool
}
