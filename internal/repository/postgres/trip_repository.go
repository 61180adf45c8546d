package postgres

import (
	"context"
	"errors"
	"fmt"

	"nycTaxiExplorer/domain"

	"gorm.io/gorm"
)

const detailColumns = `t.*,
	pu.zone AS pickup_zone, pu.borough AS pickup_borough,
	dz.zone AS dropoff_zone, dz.borough AS dropoff_borough`

type TripRepository struct {
	DB *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{
		DB: db,
	}
}

func applyTripFilter(q *gorm.DB, prefix string, f domain.TripFilter) *gorm.DB {
	if f.StartDate != nil {
		q = q.Where(prefix+"pickup_datetime >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where(prefix+"pickup_datetime <= ?", *f.EndDate)
	}
	if f.MinFare != nil {
		q = q.Where(prefix+"fare_amount >= ?", *f.MinFare)
	}
	if f.MaxFare != nil {
		q = q.Where(prefix+"fare_amount <= ?", *f.MaxFare)
	}
	if f.MinDistance != nil {
		q = q.Where(prefix+"trip_distance >= ?", *f.MinDistance)
	}
	if f.MaxDistance != nil {
		q = q.Where(prefix+"trip_distance <= ?", *f.MaxDistance)
	}
	if f.PickupLocationID != nil {
		q = q.Where(prefix+"pickup_location_id = ?", *f.PickupLocationID)
	}
	if f.DropoffLocationID != nil {
		q = q.Where(prefix+"dropoff_location_id = ?", *f.DropoffLocationID)
	}
	return q
}

func (r *TripRepository) FindByID(ctx context.Context, id int64) (domain.TripDetail, error) {
	if err := ctx.Err(); err != nil {
		return domain.TripDetail{}, fmt.Errorf("context error: %w", err)
	}

	var trip domain.TripDetail
	err := r.DB.WithContext(ctx).
		Table("trips AS t").
		Select(detailColumns).
		Joins("LEFT JOIN zones pu ON t.pickup_location_id = pu.location_id").
		Joins("LEFT JOIN zones dz ON t.dropoff_location_id = dz.location_id").
		Where("t.trip_id = ?", id).
		Take(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TripDetail{}, domain.ErrTripNotFound
		}
		return domain.TripDetail{}, fmt.Errorf("failed to find trip: %w", err)
	}

	return trip, nil
}

// Filter returns the newest matching trips first.
func (r *TripRepository) Filter(ctx context.Context, filter domain.TripFilter, limit, offset int) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	trips := []domain.Trip{}
	q := applyTripFilter(r.DB.WithContext(ctx).Model(&domain.Trip{}), "", filter)
	err := q.Order("pickup_datetime DESC").Limit(limit).Offset(offset).Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to filter trips: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) Count(ctx context.Context, filter domain.TripFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var total int64
	q := applyTripFilter(r.DB.WithContext(ctx).Model(&domain.Trip{}), "", filter)
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}

	return total, nil
}

// Search joins zone names onto the filtered trips.
func (r *TripRepository) Search(ctx context.Context, filter domain.TripFilter, limit int) ([]domain.TripDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	trips := []domain.TripDetail{}
	q := r.DB.WithContext(ctx).
		Table("trips AS t").
		Select(detailColumns).
		Joins("JOIN zones pu ON t.pickup_location_id = pu.location_id").
		Joins("JOIN zones dz ON t.dropoff_location_id = dz.location_id")
	q = applyTripFilter(q, "t.", filter)

	if err := q.Order("t.pickup_datetime DESC").Limit(limit).Scan(&trips).Error; err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) FindByHour(ctx context.Context, hour, limit int) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	trips := []domain.Trip{}
	err := r.DB.WithContext(ctx).Where("pickup_hour = ?", hour).Limit(limit).Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find trips by hour: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) FindByZone(ctx context.Context, zoneID int64, locationType string, limit int) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	column := "pickup_location_id"
	if locationType == domain.LocationDropoff {
		column = "dropoff_location_id"
	}

	trips := []domain.Trip{}
	err := r.DB.WithContext(ctx).Where(column+" = ?", zoneID).Limit(limit).Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find trips by zone: %w", err)
	}

	return trips, nil
}

func (r *TripRepository) DateRange(ctx context.Context) (domain.DateRange, error) {
	if err := ctx.Err(); err != nil {
		return domain.DateRange{}, fmt.Errorf("context error: %w", err)
	}

	var out domain.DateRange
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("MIN(pickup_datetime) AS min_date, MAX(pickup_datetime) AS max_date").
		Scan(&out).Error
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("failed to get date range: %w", err)
	}

	return out, nil
}

// Sample draws n trips uniformly at random for anomaly detection.
func (r *TripRepository) Sample(ctx context.Context, n int) ([]domain.AnomalyCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows := []domain.AnomalyCandidate{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("trip_id, fare_amount, trip_distance, COALESCE(trip_duration_min, 0) AS trip_duration_min").
		Order("RANDOM()").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sample trips: %w", err)
	}

	return rows, nil
}

func (r *TripRepository) CreateInBatches(ctx context.Context, trips []domain.Trip, batchSize int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(trips) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(trips, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert trips: %w", err)
	}

	return nil
}

// Truncate empties the trips table before a reseed.
func (r *TripRepository) Truncate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Exec("TRUNCATE TABLE trips RESTART IDENTITY").Error; err != nil {
		return fmt.Errorf("failed to truncate trips: %w", err)
	}

	return nil
}
