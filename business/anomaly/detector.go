package anomaly

import "math"

const (
	DefaultZThreshold = 3.0

	minFarePerMile = 2.0
	maxFarePerMile = 50.0

	maxSpeedMPH        = 80.0
	minSpeedMPH        = 1.0
	slowTripMinMiles   = 0.5
	referenceSpeedMPH  = 15.0
	durationLowerRatio = 0.5
	durationUpperRatio = 1.5
)

type Reason string

const (
	ReasonFareOutlier          Reason = "fare_outlier"
	ReasonFarePerMile          Reason = "fare_per_mile_anomaly"
	ReasonSpeedTooHigh         Reason = "speed_too_high"
	ReasonSpeedTooLow          Reason = "speed_too_low"
	ReasonDistanceTimeMismatch Reason = "distance_time_mismatch"
)

// Trip is the read-only view of a trip the detector works on.
type Trip struct {
	TripID          int64   `json:"trip_id"`
	FareAmount      float64 `json:"fare_amount"`
	TripDistance    float64 `json:"trip_distance"`
	TripDurationMin float64 `json:"trip_duration_min"`
}

// Record flags one trip for one reason. Index is the trip's position in the
// input slice; a trip may appear in several records.
type Record struct {
	Index            int      `json:"index"`
	TripID           int64    `json:"trip_id"`
	Reason           Reason   `json:"reason"`
	ZScore           *float64 `json:"z_score,omitempty"`
	FarePerMile      *float64 `json:"fare_per_mile,omitempty"`
	SpeedMPH         *float64 `json:"speed_mph,omitempty"`
	ExpectedDuration *float64 `json:"expected_duration,omitempty"`
	Fare             *float64 `json:"fare,omitempty"`
	Distance         *float64 `json:"distance,omitempty"`
	Duration         *float64 `json:"duration,omitempty"`
}

type Result struct {
	FareAnomalies       []Record `json:"fare_anomalies"`
	SpeedAnomalies      []Record `json:"speed_anomalies"`
	MismatchAnomalies   []Record `json:"mismatch_anomalies"`
	TotalAnomalousTrips int      `json:"total_anomalous_trips"`
	AnomalyRate         float64  `json:"anomaly_rate"`
}

// Summary counts raw flag entries per pass, while TotalAnomalies counts
// distinct trips. The two denominators differ on purpose.
type Summary struct {
	TotalTrips         int     `json:"total_trips"`
	TotalAnomalies     int     `json:"total_anomalies"`
	AnomalyRatePercent float64 `json:"anomaly_rate_percent"`
	FareAnomalies      int     `json:"fare_anomalies"`
	SpeedAnomalies     int     `json:"speed_anomalies"`
	MismatchAnomalies  int     `json:"mismatch_anomalies"`
}

type Detector struct {
	zThreshold float64
}

func NewDetector(zThreshold float64) *Detector {
	return &Detector{zThreshold: zThreshold}
}

func (d *Detector) ZThreshold() float64 {
	return d.zThreshold
}

// FareAnomalies flags fares more than zThreshold standard deviations from the
// sample mean, and fares whose per-mile ratio leaves [$2, $50].
func (d *Detector) FareAnomalies(trips []Trip) []Record {
	anomalies := []Record{}
	if len(trips) == 0 {
		return anomalies
	}

	fares := make([]float64, len(trips))
	for i, t := range trips {
		fares[i] = t.FareAmount
	}
	fareMean := mean(fares)
	fareStd := stdDev(fares, fareMean)

	for i, t := range trips {
		fare := t.FareAmount
		distance := t.TripDistance

		if fareStd > 0 {
			z := (fare - fareMean) / fareStd
			if abs(z) > d.zThreshold {
				anomalies = append(anomalies, Record{
					Index:  i,
					TripID: t.TripID,
					Reason: ReasonFareOutlier,
					ZScore: ptr(round(z, 2)),
					Fare:   ptr(fare),
				})
			}
		}

		if distance > 0 {
			perMile := fare / distance
			if perMile < minFarePerMile || perMile > maxFarePerMile {
				anomalies = append(anomalies, Record{
					Index:       i,
					TripID:      t.TripID,
					Reason:      ReasonFarePerMile,
					FarePerMile: ptr(round(perMile, 2)),
					Fare:        ptr(fare),
					Distance:    ptr(distance),
				})
			}
		}
	}

	return anomalies
}

// SpeedAnomalies flags physically implausible average speeds.
func (d *Detector) SpeedAnomalies(trips []Trip) []Record {
	anomalies := []Record{}

	for i, t := range trips {
		distance := t.TripDistance
		duration := t.TripDurationMin
		if duration <= 0 || distance <= 0 {
			continue
		}

		speed := (distance / duration) * 60

		var reason Reason
		switch {
		case speed > maxSpeedMPH:
			reason = ReasonSpeedTooHigh
		case speed < minSpeedMPH && distance > slowTripMinMiles:
			reason = ReasonSpeedTooLow
		default:
			continue
		}

		anomalies = append(anomalies, Record{
			Index:    i,
			TripID:   t.TripID,
			Reason:   reason,
			SpeedMPH: ptr(round(speed, 1)),
			Distance: ptr(distance),
			Duration: ptr(duration),
		})
	}

	return anomalies
}

// MismatchAnomalies flags durations outside 50%-150% of the time a 15 mph
// trip of the same distance would take.
func (d *Detector) MismatchAnomalies(trips []Trip) []Record {
	anomalies := []Record{}

	for i, t := range trips {
		distance := t.TripDistance
		duration := t.TripDurationMin
		if distance <= 0 || duration <= 0 {
			continue
		}

		expected := (distance / referenceSpeedMPH) * 60
		if duration < expected*durationLowerRatio || duration > expected*durationUpperRatio {
			anomalies = append(anomalies, Record{
				Index:            i,
				TripID:           t.TripID,
				Reason:           ReasonDistanceTimeMismatch,
				Distance:         ptr(distance),
				Duration:         ptr(duration),
				ExpectedDuration: ptr(round(expected, 1)),
			})
		}
	}

	return anomalies
}

// DetectAll runs every pass and counts distinct flagged trips.
func (d *Detector) DetectAll(trips []Trip) Result {
	res := Result{
		FareAnomalies:     d.FareAnomalies(trips),
		SpeedAnomalies:    d.SpeedAnomalies(trips),
		MismatchAnomalies: d.MismatchAnomalies(trips),
	}

	seen := make(map[int]struct{})
	for _, list := range [][]Record{res.FareAnomalies, res.SpeedAnomalies, res.MismatchAnomalies} {
		for _, r := range list {
			seen[r.Index] = struct{}{}
		}
	}

	res.TotalAnomalousTrips = len(seen)
	if len(trips) > 0 {
		res.AnomalyRate = float64(len(seen)) / float64(len(trips))
	}

	return res
}

func (d *Detector) Summarize(trips []Trip) Summary {
	return SummaryOf(trips, d.DetectAll(trips))
}

// SummaryOf rolls up an already computed result for trips.
func SummaryOf(trips []Trip, res Result) Summary {
	return Summary{
		TotalTrips:         len(trips),
		TotalAnomalies:     res.TotalAnomalousTrips,
		AnomalyRatePercent: round(res.AnomalyRate*100, 2),
		FareAnomalies:      len(res.FareAnomalies),
		SpeedAnomalies:     len(res.SpeedAnomalies),
		MismatchAnomalies:  len(res.MismatchAnomalies),
	}
}

// FindAnomalies is a one-shot DetectAll with the given threshold.
func FindAnomalies(trips []Trip, zThreshold float64) Result {
	return NewDetector(zThreshold).DetectAll(trips)
}

// round sends ties to the even digit, like utils.Round. Keep the two in step.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

func ptr(v float64) *float64 {
	return &v
}
