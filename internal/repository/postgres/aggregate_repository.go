package postgres

import (
	"context"
	"fmt"

	"nycTaxiExplorer/domain"

	"gorm.io/gorm"
)

// AggregateRepository runs the GROUP BY queries behind the stats and
// analytics endpoints. Inputs for the top-k selector are ordered by their
// grouping key so the selector sees a stable encounter order.
type AggregateRepository struct {
	DB *gorm.DB
}

func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{
		DB: db,
	}
}

func (r *AggregateRepository) zoneValues(ctx context.Context, column, expr, what string) ([]domain.ZoneValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.ZoneValue{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select(column + " AS location_id, " + expr + " AS value").
		Where(column + " IS NOT NULL").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", what, err)
	}

	return rows, nil
}

func (r *AggregateRepository) PickupCounts(ctx context.Context) ([]domain.ZoneValue, error) {
	return r.zoneValues(ctx, "pickup_location_id", "COUNT(*)", "pickup counts")
}

func (r *AggregateRepository) DropoffCounts(ctx context.Context) ([]domain.ZoneValue, error) {
	return r.zoneValues(ctx, "dropoff_location_id", "COUNT(*)", "dropoff counts")
}

func (r *AggregateRepository) RevenueByPickup(ctx context.Context) ([]domain.ZoneValue, error) {
	return r.zoneValues(ctx, "pickup_location_id", "COALESCE(SUM(fare_amount), 0)", "revenue")
}

func (r *AggregateRepository) RouteCounts(ctx context.Context) ([]domain.RouteCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.RouteCount{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("pickup_location_id, dropoff_location_id, COUNT(*) AS trip_count").
		Group("pickup_location_id, dropoff_location_id").
		Order("pickup_location_id, dropoff_location_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate routes: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) BasicStats(ctx context.Context) (domain.BasicStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.BasicStats{}, fmt.Errorf("context error: %w", err)
	}

	var row struct {
		TotalTrips   int64
		AvgFare      *float64
		AvgDistance  *float64
		AvgDuration  *float64
		TotalRevenue *float64
	}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select(`COUNT(*) AS total_trips,
			AVG(fare_amount) AS avg_fare,
			AVG(trip_distance) AS avg_distance,
			AVG(trip_duration_min) AS avg_duration,
			SUM(fare_amount) AS total_revenue`).
		Scan(&row).Error
	if err != nil {
		return domain.BasicStats{}, fmt.Errorf("failed to get basic stats: %w", err)
	}

	return domain.BasicStats{
		TotalTrips:   row.TotalTrips,
		AvgFare:      orZero(row.AvgFare),
		AvgDistance:  orZero(row.AvgDistance),
		AvgDuration:  orZero(row.AvgDuration),
		TotalRevenue: orZero(row.TotalRevenue),
	}, nil
}

func (r *AggregateRepository) HourlyDistribution(ctx context.Context) ([]domain.HourlyStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.HourlyStat{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("pickup_hour, COUNT(*) AS trip_count, AVG(fare_amount) AS avg_fare, AVG(trip_distance) AS avg_distance").
		Group("pickup_hour").
		Order("pickup_hour").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly distribution: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) BoroughStats(ctx context.Context) ([]domain.BoroughStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.BoroughStat{}
	err := r.DB.WithContext(ctx).
		Table("trips AS t").
		Select(`z.borough, COUNT(t.trip_id) AS trip_count,
			AVG(t.fare_amount) AS avg_fare,
			AVG(t.trip_distance) AS avg_distance,
			SUM(t.fare_amount) AS total_revenue`).
		Joins("JOIN zones z ON t.pickup_location_id = z.location_id").
		Group("z.borough").
		Order("trip_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get borough stats: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) TopPickupZones(ctx context.Context, limit int) ([]domain.ZoneCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.ZoneCount{}
	err := r.DB.WithContext(ctx).
		Table("zones AS z").
		Select("z.location_id, z.zone, z.borough, COUNT(t.trip_id) AS trip_count, AVG(t.fare_amount) AS avg_fare").
		Joins("LEFT JOIN trips t ON z.location_id = t.pickup_location_id").
		Group("z.location_id").
		Order("trip_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top pickup zones: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) TopDropoffZones(ctx context.Context, limit int) ([]domain.ZoneCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.ZoneCount{}
	err := r.DB.WithContext(ctx).
		Table("zones AS z").
		Select("z.location_id, z.zone, z.borough, COUNT(t.trip_id) AS trip_count").
		Joins("LEFT JOIN trips t ON z.location_id = t.dropoff_location_id").
		Group("z.location_id").
		Order("trip_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top dropoff zones: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) PopularRoutes(ctx context.Context, limit int) ([]domain.RouteStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.RouteStat{}
	err := r.DB.WithContext(ctx).
		Table("trips AS t").
		Select(`t.pickup_location_id, t.dropoff_location_id,
			pu.zone AS pickup_zone, pu.borough AS pickup_borough,
			dz.zone AS dropoff_zone, dz.borough AS dropoff_borough,
			COUNT(*) AS trip_count,
			AVG(t.fare_amount) AS avg_fare,
			AVG(t.trip_distance) AS avg_distance`).
		Joins("JOIN zones pu ON t.pickup_location_id = pu.location_id").
		Joins("JOIN zones dz ON t.dropoff_location_id = dz.location_id").
		Group("t.pickup_location_id, t.dropoff_location_id, pu.zone, pu.borough, dz.zone, dz.borough").
		Order("trip_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get popular routes: %w", err)
	}

	return rows, nil
}

// FareRange reports ok=false when there are no trips.
func (r *AggregateRepository) FareRange(ctx context.Context) (minFare, maxFare float64, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, false, fmt.Errorf("context error: %w", err)
	}

	var row struct {
		MinFare *float64
		MaxFare *float64
	}
	err = r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("MIN(fare_amount) AS min_fare, MAX(fare_amount) AS max_fare").
		Scan(&row).Error
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to get fare range: %w", err)
	}
	if row.MinFare == nil || row.MaxFare == nil {
		return 0, 0, false, nil
	}

	return *row.MinFare, *row.MaxFare, true, nil
}

// FareBinCount counts fares in [start, end).
func (r *AggregateRepository) FareBinCount(ctx context.Context, start, end float64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Where("fare_amount >= ? AND fare_amount < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count fare bin: %w", err)
	}

	return count, nil
}

func (r *AggregateRepository) SpeedByHour(ctx context.Context) ([]domain.SpeedPattern, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.SpeedPattern{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("pickup_hour, AVG(avg_speed_mph) AS avg_speed, COUNT(*) AS trip_count").
		Where("avg_speed_mph > 0 AND avg_speed_mph < 80").
		Group("pickup_hour").
		Order("pickup_hour").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get speed patterns: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) RevenueByHour(ctx context.Context) ([]domain.HourlyRevenue, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.HourlyRevenue{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("pickup_hour, COUNT(*) AS trip_count, SUM(fare_amount) AS total_revenue, AVG(fare_amount) AS avg_fare").
		Group("pickup_hour").
		Order("pickup_hour").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue by hour: %w", err)
	}

	return rows, nil
}

func (r *AggregateRepository) BoroughComparison(ctx context.Context) ([]domain.BoroughComparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.BoroughComparison{}
	err := r.DB.WithContext(ctx).
		Table("trips AS t").
		Select(`z.borough, COUNT(t.trip_id) AS trip_count,
			AVG(t.fare_amount) AS avg_fare,
			AVG(t.trip_distance) AS avg_distance,
			AVG(t.trip_duration_min) AS avg_duration,
			AVG(t.avg_speed_mph) AS avg_speed,
			SUM(t.fare_amount) AS total_revenue`).
		Joins("JOIN zones z ON t.pickup_location_id = z.location_id").
		Group("z.borough").
		Order("trip_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compare boroughs: %w", err)
	}

	return rows, nil
}
