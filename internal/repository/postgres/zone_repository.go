package postgres

import (
	"context"
	"errors"
	"fmt"

	"nycTaxiExplorer/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ZoneRepository struct {
	DB *gorm.DB
}

func NewZoneRepository(db *gorm.DB) *ZoneRepository {
	return &ZoneRepository{
		DB: db,
	}
}

func (r *ZoneRepository) FindAll(ctx context.Context) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	zones := []domain.Zone{}
	if err := r.DB.WithContext(ctx).Order("borough, zone").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("failed to find zones: %w", err)
	}

	return zones, nil
}

func (r *ZoneRepository) FindByID(ctx context.Context, id int64) (domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return domain.Zone{}, fmt.Errorf("context error: %w", err)
	}

	var zone domain.Zone
	err := r.DB.WithContext(ctx).Where("location_id = ?", id).First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Zone{}, domain.ErrZoneNotFound
		}
		return domain.Zone{}, fmt.Errorf("failed to find zone: %w", err)
	}

	return zone, nil
}

// FindByIDs returns the zones keyed by location id; unknown ids are absent.
func (r *ZoneRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[int64]domain.Zone, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var zones []domain.Zone
	if err := r.DB.WithContext(ctx).Where("location_id IN ?", ids).Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("failed to find zones: %w", err)
	}
	for _, z := range zones {
		out[z.LocationID] = z
	}

	return out, nil
}

func (r *ZoneRepository) FindByBorough(ctx context.Context, borough string) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	zones := []domain.Zone{}
	if err := r.DB.WithContext(ctx).Where("borough = ?", borough).Order("zone").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("failed to find zones by borough: %w", err)
	}

	return zones, nil
}

func (r *ZoneRepository) Boroughs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	boroughs := []string{}
	err := r.DB.WithContext(ctx).Model(&domain.Zone{}).Distinct().Order("borough").Pluck("borough", &boroughs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list boroughs: %w", err)
	}

	return boroughs, nil
}

func (r *ZoneRepository) Search(ctx context.Context, query string) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	pattern := "%" + query + "%"
	zones := []domain.Zone{}
	err := r.DB.WithContext(ctx).
		Where("zone ILIKE ? OR borough ILIKE ?", pattern, pattern).
		Order("zone").
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search zones: %w", err)
	}

	return zones, nil
}

func (r *ZoneRepository) Stats(ctx context.Context, id int64) (domain.ZoneStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.ZoneStats{}, fmt.Errorf("context error: %w", err)
	}

	var pickup struct {
		PickupCount int64
		AvgFare     *float64
		AvgDistance *float64
		AvgDuration *float64
	}
	err := r.DB.WithContext(ctx).
		Model(&domain.Trip{}).
		Select("COUNT(*) AS pickup_count, AVG(fare_amount) AS avg_fare, AVG(trip_distance) AS avg_distance, AVG(trip_duration_min) AS avg_duration").
		Where("pickup_location_id = ?", id).
		Scan(&pickup).Error
	if err != nil {
		return domain.ZoneStats{}, fmt.Errorf("failed to get pickup stats: %w", err)
	}

	var dropoffs int64
	if err := r.DB.WithContext(ctx).Model(&domain.Trip{}).Where("dropoff_location_id = ?", id).Count(&dropoffs).Error; err != nil {
		return domain.ZoneStats{}, fmt.Errorf("failed to get dropoff stats: %w", err)
	}

	return domain.ZoneStats{
		PickupCount:  pickup.PickupCount,
		DropoffCount: dropoffs,
		AvgFare:      orZero(pickup.AvgFare),
		AvgDistance:  orZero(pickup.AvgDistance),
		AvgDuration:  orZero(pickup.AvgDuration),
	}, nil
}

// Upsert inserts zones and overwrites names of the ones already present.
func (r *ZoneRepository) Upsert(ctx context.Context, zones []domain.Zone) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(zones) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"borough", "zone", "service_zone"}),
	}).Create(&zones).Error
	if err != nil {
		return fmt.Errorf("failed to upsert zones: %w", err)
	}

	return nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
