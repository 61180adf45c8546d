package domain

type BasicStats struct {
	TotalTrips   int64   `json:"total_trips"`
	AvgFare      float64 `json:"avg_fare"`
	AvgDistance  float64 `json:"avg_distance"`
	AvgDuration  float64 `json:"avg_duration"`
	TotalRevenue float64 `json:"total_revenue"`
}

type HourlyStat struct {
	Hour        int     `gorm:"column:pickup_hour" json:"hour"`
	TripCount   int64   `gorm:"column:trip_count" json:"trip_count"`
	AvgFare     float64 `gorm:"column:avg_fare" json:"avg_fare"`
	AvgDistance float64 `gorm:"column:avg_distance" json:"avg_distance"`
}

type BoroughStat struct {
	Borough      string  `gorm:"column:borough" json:"borough"`
	TripCount    int64   `gorm:"column:trip_count" json:"trip_count"`
	AvgFare      float64 `gorm:"column:avg_fare" json:"avg_fare"`
	AvgDistance  float64 `gorm:"column:avg_distance" json:"avg_distance"`
	TotalRevenue float64 `gorm:"column:total_revenue" json:"total_revenue"`
}

// ZoneCount is a SQL-ranked zone; AvgFare is only filled for pickups.
type ZoneCount struct {
	LocationID int64    `gorm:"column:location_id" json:"location_id"`
	Zone       string   `gorm:"column:zone" json:"zone"`
	Borough    string   `gorm:"column:borough" json:"borough"`
	TripCount  int64    `gorm:"column:trip_count" json:"trip_count"`
	AvgFare    *float64 `gorm:"column:avg_fare" json:"avg_fare,omitempty"`
}

type RouteStat struct {
	PickupLocationID  int64   `gorm:"column:pickup_location_id" json:"pickup_location_id"`
	DropoffLocationID int64   `gorm:"column:dropoff_location_id" json:"dropoff_location_id"`
	PickupZone        string  `gorm:"column:pickup_zone" json:"pickup_zone"`
	PickupBorough     string  `gorm:"column:pickup_borough" json:"pickup_borough"`
	DropoffZone       string  `gorm:"column:dropoff_zone" json:"dropoff_zone"`
	DropoffBorough    string  `gorm:"column:dropoff_borough" json:"dropoff_borough"`
	TripCount         int64   `gorm:"column:trip_count" json:"trip_count"`
	AvgFare           float64 `gorm:"column:avg_fare" json:"avg_fare"`
	AvgDistance       float64 `gorm:"column:avg_distance" json:"avg_distance"`
}

type FareBin struct {
	BinStart float64 `json:"bin_start"`
	BinEnd   float64 `json:"bin_end"`
	Count    int64   `json:"count"`
}

type SpeedPattern struct {
	Hour      int     `gorm:"column:pickup_hour" json:"hour"`
	AvgSpeed  float64 `gorm:"column:avg_speed" json:"avg_speed"`
	TripCount int64   `gorm:"column:trip_count" json:"trip_count"`
}

type HourlyRevenue struct {
	Hour         int     `gorm:"column:pickup_hour" json:"hour"`
	TripCount    int64   `gorm:"column:trip_count" json:"trip_count"`
	TotalRevenue float64 `gorm:"column:total_revenue" json:"total_revenue"`
	AvgFare      float64 `gorm:"column:avg_fare" json:"avg_fare"`
}

type BoroughComparison struct {
	Borough      string  `gorm:"column:borough" json:"borough"`
	TripCount    int64   `gorm:"column:trip_count" json:"trip_count"`
	AvgFare      float64 `gorm:"column:avg_fare" json:"avg_fare"`
	AvgDistance  float64 `gorm:"column:avg_distance" json:"avg_distance"`
	AvgDuration  float64 `gorm:"column:avg_duration" json:"avg_duration"`
	AvgSpeed     float64 `gorm:"column:avg_speed" json:"avg_speed"`
	TotalRevenue float64 `gorm:"column:total_revenue" json:"total_revenue"`
}

const (
	MetricPickups  = "pickups"
	MetricDropoffs = "dropoffs"
	MetricRevenue  = "revenue"
)

// TopZone is one entry of a ranking produced by the top-k selector.
type TopZone struct {
	LocationID int64   `json:"location_id"`
	Zone       string  `json:"zone"`
	Borough    string  `json:"borough"`
	Value      float64 `json:"value"`
	Metric     string  `json:"metric"`
}

type TopRoute struct {
	PickupLocationID  int64  `json:"pickup_location_id"`
	PickupZone        string `json:"pickup_zone"`
	PickupBorough     string `json:"pickup_borough"`
	DropoffLocationID int64  `json:"dropoff_location_id"`
	DropoffZone       string `json:"dropoff_zone"`
	DropoffBorough    string `json:"dropoff_borough"`
	TripCount         int64  `json:"trip_count"`
}

type Insights struct {
	TopPickupZones    []TopZone           `json:"top_pickup_zones"`
	TopRevenueZones   []TopZone           `json:"top_revenue_zones"`
	TopRoutes         []TopRoute          `json:"top_routes"`
	BoroughComparison []BoroughComparison `json:"borough_comparison"`
	SlowestHours      []SpeedPattern      `json:"slowest_hours"`
}

// SearchRequest is the body of a free-form trip search.
type SearchRequest struct {
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	MinFare           *float64 `json:"min_fare" validate:"omitempty,gte=0"`
	MaxFare           *float64 `json:"max_fare" validate:"omitempty,gte=0"`
	PickupLocationID  *int64   `json:"pickup_zone" validate:"omitempty,gte=1"`
	DropoffLocationID *int64   `json:"dropoff_zone" validate:"omitempty,gte=1"`
	Limit             int      `json:"limit" validate:"omitempty,gte=1"`
}

// ZoneValue is one grouped aggregate (count or revenue) keyed by zone.
type ZoneValue struct {
	LocationID int64   `gorm:"column:location_id"`
	Value      float64 `gorm:"column:value"`
}

type RouteCount struct {
	PickupLocationID  int64 `gorm:"column:pickup_location_id"`
	DropoffLocationID int64 `gorm:"column:dropoff_location_id"`
	TripCount         int64 `gorm:"column:trip_count"`
}
