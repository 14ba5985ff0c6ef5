package service

import (
	"math"
	"sort"
	"time"

	"github.com/emberfeed/emberfeed/internal/models"
)

// ElectricityStats runs analyses over one country's monthly generation
// records. It holds already-decoded data and never touches the network.
type ElectricityStats struct {
	records []models.GenerationRecord
}

func NewElectricityStats(records []models.GenerationRecord) *ElectricityStats {
	return &ElectricityStats{records: records}
}

// LatestDate returns the most recent month present in the records, or the
// zero time when there are none.
func (s *ElectricityStats) LatestDate() time.Time {
	var max time.Time
	for _, r := range s.records {
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return max
}

// PeakMonthsBySeries finds, for each fuel type, the record holding the peak
// value of the given metric. Entries with an empty fuel type or a missing
// metric value are skipped.
func (s *ElectricityStats) PeakMonthsBySeries(metric models.Metric) map[string]models.GenerationRecord {
	peaks := make(map[string]models.GenerationRecord)

	for _, r := range s.records {
		if r.FuelType == "" {
			continue
		}
		value := metric.Value(&r)
		if value == nil {
			continue
		}

		current, ok := peaks[r.FuelType]
		if !ok || *value > *metric.Value(&current) {
			peaks[r.FuelType] = r
		}
	}

	return peaks
}

// NewRecordsInLatestMonth finds fuel types whose latest-month value exceeds
// every previous month's. Fuel types with no history before the latest month
// count as new records with a previous peak of zero.
func (s *ElectricityStats) NewRecordsInLatestMonth(latestDate time.Time, metric models.Metric, countryCode, countryName string) []models.NewPeakRecord {
	var before, latest []models.GenerationRecord
	for _, r := range s.records {
		switch {
		case r.Date.Before(latestDate):
			before = append(before, r)
		case r.Date.Equal(latestDate):
			latest = append(latest, r)
		}
	}

	peaksBefore := NewElectricityStats(before).PeakMonthsBySeries(metric)

	var newRecords []models.NewPeakRecord
	for _, r := range latest {
		if r.FuelType == "" {
			continue
		}
		value := metric.Value(&r)
		if value == nil {
			continue
		}

		previousPeak := 0.0
		var previousDate *time.Time
		if prev, ok := peaksBefore[r.FuelType]; ok {
			if prevValue := metric.Value(&prev); prevValue != nil {
				if *value <= *prevValue {
					continue
				}
				previousPeak = *prevValue
				d := prev.Date
				previousDate = &d
			}
		}

		newRecords = append(newRecords, models.NewPeakRecord{
			CountryCode:      countryCode,
			CountryName:      countryName,
			FuelType:         r.FuelType,
			Date:             r.Date,
			Value:            *value,
			PreviousPeak:     previousPeak,
			PreviousPeakDate: previousDate,
		})
	}

	sort.Slice(newRecords, func(i, j int) bool {
		return newRecords[i].FuelType < newRecords[j].FuelType
	})
	return newRecords
}

// monthsBetween returns how many whole months before the latest month a
// record's month falls: 0 for the latest month itself, 1 for the month
// before, and so on.
func monthsBetween(latest, date time.Time) int {
	return (latest.Year()-date.Year())*12 + int(latest.Month()) - int(date.Month())
}

func (s *ElectricityStats) totalForWindow(from, to int) float64 {
	latest := s.LatestDate()

	var total float64
	for _, r := range s.records {
		if r.GenerationTWh == nil {
			continue
		}
		diff := monthsBetween(latest, r.Date)
		if diff >= from && diff < to {
			total += *r.GenerationTWh
		}
	}
	return round2(total)
}

// TotalGenerationLast12Months sums all generation in the twelve months ending
// at the latest month, inclusive.
func (s *ElectricityStats) TotalGenerationLast12Months() (float64, time.Time) {
	return s.totalForWindow(0, 12), s.LatestDate()
}

// TotalGenerationPrevious12Months sums the twelve months before that window.
func (s *ElectricityStats) TotalGenerationPrevious12Months() float64 {
	return s.totalForWindow(12, 24)
}

// EnergyMix snapshots each fuel type's latest month alongside year-over-year
// and rolling 12-month growth. Growth is nil when the comparison period has
// no generation.
func (s *ElectricityStats) EnergyMix() []models.FuelMix {
	latest := s.LatestDate()
	if latest.IsZero() {
		return nil
	}

	type fuelWindows struct {
		current    float64
		share      float64
		hasCurrent bool
		priorYear  float64
		hasPrior   bool
		last12     float64
		prev12     float64
	}

	byFuel := make(map[string]*fuelWindows)
	windows := func(fuel string) *fuelWindows {
		w, ok := byFuel[fuel]
		if !ok {
			w = &fuelWindows{}
			byFuel[fuel] = w
		}
		return w
	}

	for _, r := range s.records {
		if r.FuelType == "" {
			continue
		}
		diff := monthsBetween(latest, r.Date)

		// The share can be reported even when generation is null.
		if diff == 0 && r.ShareOfGeneration != nil {
			w := windows(r.FuelType)
			w.share = *r.ShareOfGeneration
			w.hasCurrent = true
		}

		if r.GenerationTWh == nil {
			continue
		}
		w := windows(r.FuelType)

		switch {
		case diff == 0:
			w.current = *r.GenerationTWh
			w.hasCurrent = true
		case diff == 12:
			w.priorYear = *r.GenerationTWh
			w.hasPrior = true
		}

		if diff >= 0 && diff < 12 {
			w.last12 += *r.GenerationTWh
		} else if diff >= 12 && diff < 24 {
			w.prev12 += *r.GenerationTWh
		}
	}

	var mix []models.FuelMix
	for fuel, w := range byFuel {
		if !w.hasCurrent {
			continue
		}

		fm := models.FuelMix{
			FuelType:          fuel,
			GenCurrentMonth:   w.current,
			ShareCurrentMonth: w.share,
			GenLast12Months:   round2(w.last12),
		}
		if w.hasPrior && w.priorYear != 0 {
			growth := round2((w.current - w.priorYear) / w.priorYear * 100)
			fm.GrowthCurrentMonth = &growth
		}
		if w.prev12 != 0 {
			growth := round2((w.last12 - w.prev12) / w.prev12 * 100)
			fm.GrowthLast12Months = &growth
		}
		mix = append(mix, fm)
	}

	sort.Slice(mix, func(i, j int) bool { return mix[i].FuelType < mix[j].FuelType })
	return mix
}

// AggregateByYear sums generation per calendar year, optionally filtered to a
// single fuel type. Years with fewer than twelve reported months are flagged
// partial.
func (s *ElectricityStats) AggregateByYear(fuelType string) []models.YearlyAggregation {
	totals := make(map[int]float64)
	monthsSeen := make(map[int]map[time.Month]bool)

	for _, r := range s.records {
		if fuelType != "" && r.FuelType != fuelType {
			continue
		}
		if r.GenerationTWh == nil {
			continue
		}

		year := r.Date.Year()
		totals[year] += *r.GenerationTWh
		if monthsSeen[year] == nil {
			monthsSeen[year] = make(map[time.Month]bool)
		}
		monthsSeen[year][r.Date.Month()] = true
	}

	var aggs []models.YearlyAggregation
	for year, total := range totals {
		aggs = append(aggs, models.YearlyAggregation{
			Year:          year,
			GenerationTWh: round2(total),
			IsPartial:     len(monthsSeen[year]) < 12,
		})
	}

	sort.Slice(aggs, func(i, j int) bool { return aggs[i].Year < aggs[j].Year })
	return aggs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
