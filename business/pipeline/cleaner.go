package pipeline

import (
	"fmt"
	"time"

	"nycTaxiExplorer/pkg/logger"
	"nycTaxiExplorer/pkg/metrics"
)

const (
	minDistance   = 0.1
	maxDistance   = 100.0
	minPassengers = 1.0
	maxPassengers = 6.0
	minFare       = 0.0
	maxFare       = 500.0
	maxDurationM  = 1440.0
	minLocationID = 1
	maxLocationID = 263
)

// CleanReport mirrors what each cleaning step did.
type CleanReport struct {
	OriginalCount int            `json:"original_count"`
	FinalCount    int            `json:"final_count"`
	RemovedCount  int            `json:"removed_count"`
	RemovedByStep map[string]int `json:"removed_by_step"`
	Log           []string       `json:"log"`
}

func (r CleanReport) RetentionRate() float64 {
	if r.OriginalCount == 0 {
		return 0
	}
	return float64(r.FinalCount) / float64(r.OriginalCount) * 100
}

type Cleaner struct {
	report CleanReport
}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean runs every step in order and returns the surviving trips. The input
// slice is not modified.
func (c *Cleaner) Clean(trips []RawTrip) ([]RawTrip, CleanReport) {
	c.report = CleanReport{
		OriginalCount: len(trips),
		RemovedByStep: map[string]int{},
		Log:           []string{},
	}

	out := make([]RawTrip, len(trips))
	copy(out, trips)

	out = c.handleMissing(out)
	out = c.removeDuplicates(out)
	out = c.filterOutliers(out)
	out = c.validateTimestamps(out)
	out = c.validateLocations(out)

	c.report.FinalCount = len(out)
	c.report.RemovedCount = c.report.OriginalCount - c.report.FinalCount

	logger.Info("Cleaning complete",
		"kept", c.report.FinalCount,
		"removed", c.report.RemovedCount,
		"retention_pct", fmt.Sprintf("%.1f", c.report.RetentionRate()))

	return out, c.report
}

func (c *Cleaner) record(step string, removed int, msg string) {
	if removed == 0 {
		return
	}
	c.report.RemovedByStep[step] += removed
	c.report.Log = append(c.report.Log, msg)
	metrics.PipelineRowsRemoved.WithLabelValues(step).Add(float64(removed))
}

func keep(trips []RawTrip, pred func(RawTrip) bool) ([]RawTrip, int) {
	kept := trips[:0]
	for _, t := range trips {
		if pred(t) {
			kept = append(kept, t)
		}
	}
	return kept, len(trips) - len(kept)
}

func (c *Cleaner) handleMissing(trips []RawTrip) []RawTrip {
	critical := []struct {
		name    string
		present func(RawTrip) bool
	}{
		{"tpep_pickup_datetime", func(t RawTrip) bool { return t.PickupAt != nil }},
		{"tpep_dropoff_datetime", func(t RawTrip) bool { return t.DropoffAt != nil }},
		{"trip_distance", func(t RawTrip) bool { return t.TripDistance != nil }},
		{"fare_amount", func(t RawTrip) bool { return t.FareAmount != nil }},
	}

	for _, col := range critical {
		var removed int
		trips, removed = keep(trips, col.present)
		c.record("missing_"+col.name, removed, fmt.Sprintf("Removed %d records with missing %s", removed, col.name))
	}

	filled := 0
	for i := range trips {
		if trips[i].PassengerCount == nil {
			one := 1.0
			trips[i].PassengerCount = &one
			filled++
		}
	}
	if filled > 0 {
		logger.Debug("Filled missing passenger counts", "count", filled)
	}

	return trips
}

type dupKey struct {
	pickup, dropoff time.Time
	pu, do          int64
	distance        float64
}

func idOr(v *int64) int64 {
	if v == nil {
		return -1
	}
	return *v
}

// removeDuplicates keeps the first of each (pickup, dropoff, PU, DO, distance).
func (c *Cleaner) removeDuplicates(trips []RawTrip) []RawTrip {
	seen := make(map[dupKey]struct{}, len(trips))
	trips, removed := keep(trips, func(t RawTrip) bool {
		k := dupKey{
			pickup:   t.PickupAt.UTC(),
			dropoff:  t.DropoffAt.UTC(),
			pu:       idOr(t.PULocationID),
			do:       idOr(t.DOLocationID),
			distance: *t.TripDistance,
		}
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
	c.record("duplicates", removed, fmt.Sprintf("Removed %d duplicate records", removed))
	return trips
}

func (c *Cleaner) filterOutliers(trips []RawTrip) []RawTrip {
	var removed int

	trips, removed = keep(trips, func(t RawTrip) bool {
		return *t.TripDistance >= minDistance && *t.TripDistance <= maxDistance
	})
	c.record("distance", removed, fmt.Sprintf("Removed %d distance outliers", removed))

	trips, removed = keep(trips, func(t RawTrip) bool {
		return *t.PassengerCount >= minPassengers && *t.PassengerCount <= maxPassengers
	})
	c.record("passengers", removed, fmt.Sprintf("Removed %d passenger outliers", removed))

	trips, removed = keep(trips, func(t RawTrip) bool {
		return *t.FareAmount >= minFare && *t.FareAmount <= maxFare
	})
	c.record("fare", removed, fmt.Sprintf("Removed %d fare outliers", removed))

	return trips
}

func (c *Cleaner) validateTimestamps(trips []RawTrip) []RawTrip {
	var removed int

	trips, removed = keep(trips, func(t RawTrip) bool {
		return t.DropoffAt.After(*t.PickupAt)
	})
	c.record("timestamps", removed, fmt.Sprintf("Removed %d invalid timestamps", removed))

	trips, removed = keep(trips, func(t RawTrip) bool {
		return t.DropoffAt.Sub(*t.PickupAt).Minutes() <= maxDurationM
	})
	c.record("over_24h", removed, fmt.Sprintf("Removed %d trips over 24 hours", removed))

	return trips
}

func validLocation(id *int64) bool {
	return id != nil && *id >= minLocationID && *id <= maxLocationID
}

func (c *Cleaner) validateLocations(trips []RawTrip) []RawTrip {
	trips, removed := keep(trips, func(t RawTrip) bool {
		return validLocation(t.PULocationID) && validLocation(t.DOLocationID)
	})
	c.record("locations", removed, fmt.Sprintf("Removed %d invalid location IDs", removed))
	return trips
}
