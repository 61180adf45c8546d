//go:build !integration

package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ordinary trips: $10 over 2 miles in 8 minutes (15 mph, $5/mile)
func ordinaryTrips(n int) []Trip {
	trips := make([]Trip, n)
	for i := range trips {
		trips[i] = Trip{TripID: int64(i + 1), FareAmount: 10, TripDistance: 2, TripDurationMin: 8}
	}
	return trips
}

func reasons(records []Record, index int) []Reason {
	var out []Reason
	for _, r := range records {
		if r.Index == index {
			out = append(out, r.Reason)
		}
	}
	return out
}

func TestNewtonSqrt(t *testing.T) {
	assert.Equal(t, 0.0, newtonSqrt(0))
	assert.Equal(t, 0.0, newtonSqrt(-4))
	assert.InDelta(t, 2.0, newtonSqrt(4), 1e-9)
	assert.InDelta(t, 3.0, newtonSqrt(9), 1e-9)
	assert.InDelta(t, 0.5, newtonSqrt(0.25), 1e-9)
}

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 0.0, stdDev(nil, 0))
	assert.Equal(t, 2.5, mean([]float64{1, 2, 3, 4}))

	constant := []float64{7, 7, 7, 7, 7}
	assert.Equal(t, 0.0, stdDev(constant, mean(constant)))

	// population std of {2,4,4,4,5,5,7,9} is exactly 2
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, stdDev(vals, mean(vals)), 1e-9)
}

func TestFareAnomalies_OutlierAndPerMile(t *testing.T) {
	trips := ordinaryTrips(20)
	trips = append(trips, Trip{TripID: 99, FareAmount: 100, TripDistance: 1, TripDurationMin: 10})
	outlier := len(trips) - 1

	got := NewDetector(DefaultZThreshold).FareAnomalies(trips)

	assert.ElementsMatch(t, []Reason{ReasonFareOutlier, ReasonFarePerMile}, reasons(got, outlier))
	for _, r := range got {
		assert.Equal(t, outlier, r.Index)
		assert.Equal(t, int64(99), r.TripID)
		switch r.Reason {
		case ReasonFareOutlier:
			require.NotNil(t, r.ZScore)
			assert.Greater(t, *r.ZScore, DefaultZThreshold)
		case ReasonFarePerMile:
			require.NotNil(t, r.FarePerMile)
			assert.Equal(t, 100.0, *r.FarePerMile)
		}
	}
}

func TestFareAnomalies_ConstantFaresSkipZScore(t *testing.T) {
	trips := []Trip{
		{FareAmount: 10, TripDistance: 0.1},
		{FareAmount: 10, TripDistance: 0},
	}

	got := NewDetector(DefaultZThreshold).FareAnomalies(trips)

	// $100/mile on the first trip; the second has no distance and std is 0
	require.Len(t, got, 1)
	assert.Equal(t, ReasonFarePerMile, got[0].Reason)
	assert.Equal(t, 0, got[0].Index)
}

func TestFareAnomalies_CheapPerMile(t *testing.T) {
	trips := []Trip{{FareAmount: 5, TripDistance: 10, TripDurationMin: 40}}

	got := NewDetector(DefaultZThreshold).FareAnomalies(trips)

	require.Len(t, got, 1)
	assert.Equal(t, 0.5, *got[0].FarePerMile)
}

func TestSpeedAnomalies(t *testing.T) {
	trips := []Trip{
		{TripID: 1, TripDistance: 10, TripDurationMin: 5},   // 120 mph
		{TripID: 2, TripDistance: 1, TripDurationMin: 120},  // 0.5 mph over a mile
		{TripID: 3, TripDistance: 0.2, TripDurationMin: 60}, // slow but short
		{TripID: 4, TripDistance: 0, TripDurationMin: 10},
		{TripID: 5, TripDistance: 3, TripDurationMin: 0},
		{TripID: 6, TripDistance: 3, TripDurationMin: 12}, // 15 mph
	}

	got := NewDetector(DefaultZThreshold).SpeedAnomalies(trips)

	require.Len(t, got, 2)
	assert.Equal(t, ReasonSpeedTooHigh, got[0].Reason)
	assert.Equal(t, 120.0, *got[0].SpeedMPH)
	assert.Equal(t, ReasonSpeedTooLow, got[1].Reason)
	assert.Equal(t, 0.5, *got[1].SpeedMPH)
	assert.Equal(t, int64(2), got[1].TripID)
}

func TestMismatchAnomalies(t *testing.T) {
	trips := []Trip{
		{TripDistance: 5, TripDurationMin: 20}, // expected 20, window [10, 30]
		{TripDistance: 5, TripDurationMin: 10.5},
		{TripDistance: 5, TripDurationMin: 29.5},
		{TripDistance: 5, TripDurationMin: 9},
		{TripDistance: 5, TripDurationMin: 31},
		{TripDistance: 0, TripDurationMin: 10},
	}

	got := NewDetector(DefaultZThreshold).MismatchAnomalies(trips)

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Index)
	assert.Equal(t, 4, got[1].Index)
	assert.Equal(t, 20.0, *got[0].ExpectedDuration)
}

func TestZeroDistanceTripIsSkipped(t *testing.T) {
	trips := []Trip{{TripID: 7, FareAmount: 12, TripDistance: 0, TripDurationMin: 10}}
	d := NewDetector(DefaultZThreshold)

	assert.Empty(t, d.SpeedAnomalies(trips))
	assert.Empty(t, d.MismatchAnomalies(trips))
	assert.Empty(t, d.FareAnomalies(trips))
}

func TestDetectAll_DistinctCountAndRate(t *testing.T) {
	trips := ordinaryTrips(3)
	trips = append(trips, Trip{TripID: 50, FareAmount: 30, TripDistance: 10, TripDurationMin: 5})

	res := NewDetector(DefaultZThreshold).DetectAll(trips)

	// trip 3 is flagged by both the speed and the mismatch pass
	assert.Len(t, res.SpeedAnomalies, 1)
	assert.Len(t, res.MismatchAnomalies, 1)
	assert.Equal(t, 1, res.TotalAnomalousTrips)
	assert.Equal(t, 0.25, res.AnomalyRate)
}

func TestDetectAll_Empty(t *testing.T) {
	res := NewDetector(DefaultZThreshold).DetectAll(nil)

	assert.Empty(t, res.FareAnomalies)
	assert.Empty(t, res.SpeedAnomalies)
	assert.Empty(t, res.MismatchAnomalies)
	assert.Equal(t, 0, res.TotalAnomalousTrips)
	assert.Equal(t, 0.0, res.AnomalyRate)
}

func TestSummarize_RawCountsVersusDistinct(t *testing.T) {
	trips := []Trip{
		{TripID: 1, FareAmount: 30, TripDistance: 10, TripDurationMin: 5},
		{TripID: 2, FareAmount: 10, TripDistance: 2, TripDurationMin: 8},
		{TripID: 3, FareAmount: 10, TripDistance: 2, TripDurationMin: 8},
	}

	s := NewDetector(DefaultZThreshold).Summarize(trips)

	assert.Equal(t, 3, s.TotalTrips)
	assert.Equal(t, 1, s.TotalAnomalies)
	assert.Equal(t, 33.33, s.AnomalyRatePercent)
	assert.Equal(t, 0, s.FareAnomalies)
	assert.Equal(t, 1, s.SpeedAnomalies)
	assert.Equal(t, 1, s.MismatchAnomalies)
}

func TestFindAnomalies_UsesThreshold(t *testing.T) {
	trips := ordinaryTrips(4)
	trips = append(trips, Trip{FareAmount: 20, TripDistance: 2, TripDurationMin: 8})

	strict := FindAnomalies(trips, 1.0)
	loose := FindAnomalies(trips, DefaultZThreshold)

	assert.Len(t, strict.FareAnomalies, 1)
	assert.Empty(t, loose.FareAnomalies)
}

func TestRounding_TiesGoToEven(t *testing.T) {
	d := NewDetector(DefaultZThreshold)

	// 1 anomalous trip out of 32 is exactly 3.125%
	trips := ordinaryTrips(31)
	trips = append(trips, Trip{TripID: 32, FareAmount: 30, TripDistance: 10, TripDurationMin: 5})
	s := d.Summarize(trips)
	assert.Equal(t, 1, s.TotalAnomalies)
	assert.Equal(t, 3.12, s.AnomalyRatePercent)

	// $1 over 8 miles is 0.125 per mile
	fare := d.FareAnomalies([]Trip{{FareAmount: 1, TripDistance: 8, TripDurationMin: 30}})
	require.Len(t, fare, 1)
	assert.Equal(t, 0.12, *fare[0].FarePerMile)

	// one mile in four hours is 0.25 mph
	speed := d.SpeedAnomalies([]Trip{{TripDistance: 1, TripDurationMin: 240}})
	require.Len(t, speed, 1)
	assert.Equal(t, ReasonSpeedTooLow, speed[0].Reason)
	assert.Equal(t, 0.2, *speed[0].SpeedMPH)
}
