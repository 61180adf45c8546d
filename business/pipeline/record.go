package pipeline

import "time"

// RawTrip is one TLC trip row. Nil fields were blank or unparsable.
type RawTrip struct {
	PickupAt       *time.Time
	DropoffAt      *time.Time
	PassengerCount *float64
	TripDistance   *float64
	PULocationID   *int64
	DOLocationID   *int64
	FareAmount     *float64
	TipAmount      *float64
	TotalAmount    *float64
}

// ZoneRow is one line of taxi_zone_lookup.csv as read.
type ZoneRow struct {
	LocationID  int64
	Borough     string
	Zone        string
	ServiceZone string
}
