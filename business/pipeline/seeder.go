package pipeline

import (
	"context"
	"fmt"
	"strings"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/logger"
	"nycTaxiExplorer/pkg/metrics"
)

const unknown = "Unknown"

type ZoneWriter interface {
	Upsert(ctx context.Context, zones []domain.Zone) error
}

type TripWriter interface {
	CreateInBatches(ctx context.Context, trips []domain.Trip, batchSize int) error
	Truncate(ctx context.Context) error
}

func blankOrNA(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "N/A"
}

// NormalizeZones maps N/A or blank names to "Unknown" and a blank service
// zone to NULL.
func NormalizeZones(rows []ZoneRow) []domain.Zone {
	zones := make([]domain.Zone, 0, len(rows))
	for _, r := range rows {
		z := domain.Zone{
			LocationID: r.LocationID,
			Borough:    unknown,
			Zone:       unknown,
		}
		if !blankOrNA(r.Borough) {
			z.Borough = strings.TrimSpace(r.Borough)
		}
		if !blankOrNA(r.Zone) {
			z.Zone = strings.TrimSpace(r.Zone)
		}
		if !blankOrNA(r.ServiceZone) {
			sz := strings.TrimSpace(r.ServiceZone)
			z.ServiceZone = &sz
		}
		zones = append(zones, z)
	}
	return zones
}

type Seeder struct {
	zoneRepo  ZoneWriter
	tripRepo  TripWriter
	batchSize int
}

func NewSeeder(zoneRepo ZoneWriter, tripRepo TripWriter, batchSize int) *Seeder {
	if batchSize <= 0 {
		batchSize = 5000
	}
	return &Seeder{
		zoneRepo:  zoneRepo,
		tripRepo:  tripRepo,
		batchSize: batchSize,
	}
}

// Seed upserts zones first so every trip's foreign keys resolve. With
// replace set, existing trips are removed before the insert.
func (s *Seeder) Seed(ctx context.Context, zones []domain.Zone, trips []domain.Trip, replace bool) error {
	if err := s.zoneRepo.Upsert(ctx, zones); err != nil {
		return err
	}
	logger.Info("Zones upserted", "count", len(zones))

	if replace {
		if err := s.tripRepo.Truncate(ctx); err != nil {
			return err
		}
	}

	for start := 0; start < len(trips); start += s.batchSize {
		end := min(start+s.batchSize, len(trips))
		if err := s.tripRepo.CreateInBatches(ctx, trips[start:end], s.batchSize); err != nil {
			return fmt.Errorf("failed at trip %d: %w", start, err)
		}
		metrics.PipelineTripsSeeded.Add(float64(end - start))
		logger.Debug("Inserted trips", "total", end)
	}
	logger.Info("Trips inserted", "count", len(trips))

	return nil
}
