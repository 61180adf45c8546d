package zone

import (
	"context"
	"fmt"
	"strings"

	"nycTaxiExplorer/domain"
)

type ZoneRepository interface {
	FindAll(ctx context.Context) ([]domain.Zone, error)
	FindByID(ctx context.Context, id int64) (domain.Zone, error)
	FindByBorough(ctx context.Context, borough string) ([]domain.Zone, error)
	Boroughs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]domain.Zone, error)
	Stats(ctx context.Context, id int64) (domain.ZoneStats, error)
}

type ZoneService struct {
	zoneRepo ZoneRepository
}

func NewZoneService(zoneRepo ZoneRepository) *ZoneService {
	return &ZoneService{
		zoneRepo: zoneRepo,
	}
}

func (s *ZoneService) All(ctx context.Context) ([]domain.Zone, error) {
	return s.zoneRepo.FindAll(ctx)
}

// GetWithStats returns the zone merged with its trip statistics.
func (s *ZoneService) GetWithStats(ctx context.Context, id int64) (domain.ZoneWithStats, error) {
	zone, err := s.zoneRepo.FindByID(ctx, id)
	if err != nil {
		return domain.ZoneWithStats{}, err
	}

	stats, err := s.zoneRepo.Stats(ctx, id)
	if err != nil {
		return domain.ZoneWithStats{}, err
	}

	return domain.ZoneWithStats{Zone: zone, ZoneStats: stats}, nil
}

func (s *ZoneService) ByBorough(ctx context.Context, borough string) ([]domain.Zone, error) {
	return s.zoneRepo.FindByBorough(ctx, borough)
}

func (s *ZoneService) Boroughs(ctx context.Context) ([]string, error) {
	return s.zoneRepo.Boroughs(ctx)
}

func (s *ZoneService) Search(ctx context.Context, query string) ([]domain.Zone, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidParam)
	}
	return s.zoneRepo.Search(ctx, query)
}
