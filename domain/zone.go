package domain

// CREATE TABLE public.zones (
//     location_id     INTEGER PRIMARY KEY,
//     borough         TEXT NOT NULL,
//     zone            TEXT NOT NULL,
//     service_zone    TEXT
// );

type Zone struct {
	LocationID  int64   `gorm:"primaryKey;column:location_id;autoIncrement:false" json:"location_id"`
	Borough     string  `gorm:"column:borough;type:text;not null" json:"borough"`
	Zone        string  `gorm:"column:zone;type:text;not null" json:"zone"`
	ServiceZone *string `gorm:"column:service_zone;type:text" json:"service_zone"`
}

func (Zone) TableName() string {
	return "zones"
}

// ZoneStats are pickup-side averages plus both trip counts for one zone.
type ZoneStats struct {
	PickupCount  int64   `json:"pickup_count"`
	DropoffCount int64   `json:"dropoff_count"`
	AvgFare      float64 `json:"avg_fare"`
	AvgDistance  float64 `json:"avg_distance"`
	AvgDuration  float64 `json:"avg_duration"`
}

type ZoneWithStats struct {
	Zone
	ZoneStats
}

const (
	LocationPickup  = "pickup"
	LocationDropoff = "dropoff"
)
