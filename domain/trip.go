package domain

import "time"

// CREATE TABLE public.trips (
//     trip_id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     pickup_datetime      TIMESTAMP NOT NULL,
//     dropoff_datetime     TIMESTAMP NOT NULL,
//     passenger_count      INTEGER,
//     trip_distance        NUMERIC NOT NULL,
//     pickup_location_id   INTEGER REFERENCES zones(location_id),
//     dropoff_location_id  INTEGER REFERENCES zones(location_id),
//     fare_amount          NUMERIC NOT NULL,
//     tip_amount           NUMERIC DEFAULT 0,
//     total_amount         NUMERIC,
//     trip_duration_min    NUMERIC,
//     avg_speed_mph        NUMERIC,
//     pickup_hour          INTEGER,
//     pickup_day_of_week   INTEGER,
//     is_weekend           BOOLEAN,
//     time_category        TEXT
// );

type Trip struct {
	TripID            int64     `gorm:"primaryKey;column:trip_id;autoIncrement" json:"trip_id"`
	PickupDatetime    time.Time `gorm:"column:pickup_datetime;not null;index" json:"pickup_datetime"`
	DropoffDatetime   time.Time `gorm:"column:dropoff_datetime;not null" json:"dropoff_datetime"`
	PassengerCount    *int      `gorm:"column:passenger_count" json:"passenger_count"`
	TripDistance      float64   `gorm:"column:trip_distance;not null" json:"trip_distance"`
	PickupLocationID  int64     `gorm:"column:pickup_location_id;index" json:"pickup_location_id"`
	DropoffLocationID int64     `gorm:"column:dropoff_location_id;index" json:"dropoff_location_id"`
	FareAmount        float64   `gorm:"column:fare_amount;not null" json:"fare_amount"`
	TipAmount         float64   `gorm:"column:tip_amount;default:0" json:"tip_amount"`
	TotalAmount       float64   `gorm:"column:total_amount" json:"total_amount"`
	TripDurationMin   float64   `gorm:"column:trip_duration_min" json:"trip_duration_min"`
	AvgSpeedMPH       float64   `gorm:"column:avg_speed_mph" json:"avg_speed_mph"`
	PickupHour        int       `gorm:"column:pickup_hour;index" json:"pickup_hour"`
	PickupDayOfWeek   int       `gorm:"column:pickup_day_of_week" json:"pickup_day_of_week"`
	IsWeekend         bool      `gorm:"column:is_weekend" json:"is_weekend"`
	TimeCategory      string    `gorm:"column:time_category;type:text" json:"time_category"`
}

func (Trip) TableName() string {
	return "trips"
}

// TripDetail is a trip joined with its pickup and dropoff zone names.
type TripDetail struct {
	Trip
	PickupZone     string `gorm:"column:pickup_zone" json:"pickup_zone"`
	PickupBorough  string `gorm:"column:pickup_borough" json:"pickup_borough"`
	DropoffZone    string `gorm:"column:dropoff_zone" json:"dropoff_zone"`
	DropoffBorough string `gorm:"column:dropoff_borough" json:"dropoff_borough"`
}

// TripFilter narrows trip listings. Nil fields are not applied.
type TripFilter struct {
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	MinFare           *float64   `json:"min_fare"`
	MaxFare           *float64   `json:"max_fare"`
	MinDistance       *float64   `json:"min_distance"`
	MaxDistance       *float64   `json:"max_distance"`
	PickupLocationID  *int64     `json:"pickup_location_id"`
	DropoffLocationID *int64     `json:"dropoff_location_id"`
}

type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

type TripPage struct {
	Trips      []Trip     `json:"trips"`
	Pagination Pagination `json:"pagination"`
}

type DateRange struct {
	MinDate *time.Time `json:"min_date"`
	MaxDate *time.Time `json:"max_date"`
}

// AnomalyCandidate is the slice of a trip the anomaly detector reads.
type AnomalyCandidate struct {
	TripID          int64   `gorm:"column:trip_id"`
	FareAmount      float64 `gorm:"column:fare_amount"`
	TripDistance    float64 `gorm:"column:trip_distance"`
	TripDurationMin float64 `gorm:"column:trip_duration_min"`
}
