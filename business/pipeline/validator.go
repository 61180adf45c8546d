package pipeline

import (
	"fmt"
	"time"

	"nycTaxiExplorer/domain"
)

type rangeCheck struct {
	column   string
	min, max float64
	unit     string
	value    func(domain.Trip) (float64, bool)
}

var rangeChecks = []rangeCheck{
	{"trip_distance", 0.1, 100, "miles", func(t domain.Trip) (float64, bool) { return t.TripDistance, true }},
	{"fare_amount", 0, 500, "dollars", func(t domain.Trip) (float64, bool) { return t.FareAmount, true }},
	{"passenger_count", 1, 6, "passengers", func(t domain.Trip) (float64, bool) {
		if t.PassengerCount == nil {
			return 0, false
		}
		return float64(*t.PassengerCount), true
	}},
	{"trip_duration_min", 1, 1440, "minutes", func(t domain.Trip) (float64, bool) { return t.TripDurationMin, true }},
	{"avg_speed_mph", 0, 80, "mph", func(t domain.Trip) (float64, bool) { return t.AvgSpeedMPH, true }},
	{"pickup_hour", 0, 23, "hour", func(t domain.Trip) (float64, bool) { return float64(t.PickupHour), true }},
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// Validate checks value ranges and (pickup, dropoff, PU, DO) duplicates on
// engineered trips.
func Validate(trips []domain.Trip) ValidationResult {
	res := ValidationResult{Valid: true, Issues: []string{}}

	for _, rc := range rangeChecks {
		out := 0
		for _, t := range trips {
			v, ok := rc.value(t)
			if ok && (v < rc.min || v > rc.max) {
				out++
			}
		}
		if out > 0 {
			res.Issues = append(res.Issues, fmt.Sprintf("%s: %d values outside [%g, %g] %s", rc.column, out, rc.min, rc.max, rc.unit))
		}
	}

	type key struct {
		pickup, dropoff time.Time
		pu, do          int64
	}
	seen := make(map[key]struct{}, len(trips))
	dupes := 0
	for _, t := range trips {
		k := key{t.PickupDatetime, t.DropoffDatetime, t.PickupLocationID, t.DropoffLocationID}
		if _, ok := seen[k]; ok {
			dupes++
			continue
		}
		seen[k] = struct{}{}
	}
	if dupes > 0 {
		res.Issues = append(res.Issues, fmt.Sprintf("%d duplicates found", dupes))
	}

	res.Valid = len(res.Issues) == 0
	return res
}

type DataSummary struct {
	TotalRecords int        `json:"total_records"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	AvgFare      float64    `json:"avg_fare"`
	AvgDistance  float64    `json:"avg_distance"`
	AvgDuration  float64    `json:"avg_duration"`
	AvgSpeed     float64    `json:"avg_speed"`
	TotalRevenue float64    `json:"total_revenue"`
}

func Summarize(trips []domain.Trip) DataSummary {
	s := DataSummary{TotalRecords: len(trips)}
	if len(trips) == 0 {
		return s
	}

	var fare, dist, dur, speed float64
	start, end := trips[0].PickupDatetime, trips[0].PickupDatetime
	for _, t := range trips {
		fare += t.FareAmount
		dist += t.TripDistance
		dur += t.TripDurationMin
		speed += t.AvgSpeedMPH
		s.TotalRevenue += t.TotalAmount
		if t.PickupDatetime.Before(start) {
			start = t.PickupDatetime
		}
		if t.PickupDatetime.After(end) {
			end = t.PickupDatetime
		}
	}

	n := float64(len(trips))
	s.Start, s.End = &start, &end
	s.AvgFare = fare / n
	s.AvgDistance = dist / n
	s.AvgDuration = dur / n
	s.AvgSpeed = speed / n

	return s
}
