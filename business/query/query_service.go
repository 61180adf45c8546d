package query

import (
	"context"
	"fmt"
	"math"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/utils"
)

type AggregateRepository interface {
	BasicStats(ctx context.Context) (domain.BasicStats, error)
	HourlyDistribution(ctx context.Context) ([]domain.HourlyStat, error)
	BoroughStats(ctx context.Context) ([]domain.BoroughStat, error)
	TopPickupZones(ctx context.Context, limit int) ([]domain.ZoneCount, error)
	TopDropoffZones(ctx context.Context, limit int) ([]domain.ZoneCount, error)
	PopularRoutes(ctx context.Context, limit int) ([]domain.RouteStat, error)
	FareRange(ctx context.Context) (minFare, maxFare float64, ok bool, err error)
	FareBinCount(ctx context.Context, start, end float64) (int64, error)
}

type TripSearcher interface {
	Search(ctx context.Context, filter domain.TripFilter, limit int) ([]domain.TripDetail, error)
}

type QueryService struct {
	aggRepo      AggregateRepository
	tripRepo     TripSearcher
	defaultLimit int
	maxLimit     int
}

func NewQueryService(aggRepo AggregateRepository, tripRepo TripSearcher, defaultLimit, maxLimit int) *QueryService {
	return &QueryService{
		aggRepo:      aggRepo,
		tripRepo:     tripRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (s *QueryService) limit(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidParam)
	}
	if n == 0 {
		return s.defaultLimit, nil
	}
	if n > s.maxLimit {
		return s.maxLimit, nil
	}
	return n, nil
}

func (s *QueryService) BasicStats(ctx context.Context) (domain.BasicStats, error) {
	stats, err := s.aggRepo.BasicStats(ctx)
	if err != nil {
		return domain.BasicStats{}, err
	}

	stats.AvgFare = utils.Round(stats.AvgFare, 2)
	stats.AvgDistance = utils.Round(stats.AvgDistance, 2)
	stats.AvgDuration = utils.Round(stats.AvgDuration, 1)
	stats.TotalRevenue = utils.Round(stats.TotalRevenue, 2)

	return stats, nil
}

func (s *QueryService) HourlyDistribution(ctx context.Context) ([]domain.HourlyStat, error) {
	rows, err := s.aggRepo.HourlyDistribution(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].AvgFare = utils.Round(rows[i].AvgFare, 2)
		rows[i].AvgDistance = utils.Round(rows[i].AvgDistance, 2)
	}

	return rows, nil
}

func (s *QueryService) TripsByBorough(ctx context.Context) ([]domain.BoroughStat, error) {
	rows, err := s.aggRepo.BoroughStats(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].AvgFare = utils.Round(rows[i].AvgFare, 2)
		rows[i].AvgDistance = utils.Round(rows[i].AvgDistance, 2)
		rows[i].TotalRevenue = utils.Round(rows[i].TotalRevenue, 2)
	}

	return rows, nil
}

func (s *QueryService) TopPickupZones(ctx context.Context, limit int) ([]domain.ZoneCount, error) {
	n, err := s.limit(limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.aggRepo.TopPickupZones(ctx, n)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].AvgFare != nil {
			v := utils.Round(*rows[i].AvgFare, 2)
			rows[i].AvgFare = &v
		}
	}

	return rows, nil
}

func (s *QueryService) TopDropoffZones(ctx context.Context, limit int) ([]domain.ZoneCount, error) {
	n, err := s.limit(limit)
	if err != nil {
		return nil, err
	}

	return s.aggRepo.TopDropoffZones(ctx, n)
}

func (s *QueryService) PopularRoutes(ctx context.Context, limit int) ([]domain.RouteStat, error) {
	n, err := s.limit(limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.aggRepo.PopularRoutes(ctx, n)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].AvgFare = utils.Round(rows[i].AvgFare, 2)
		rows[i].AvgDistance = utils.Round(rows[i].AvgDistance, 2)
	}

	return rows, nil
}

// FareDistribution splits [min fare, max fare) into equal-width bins. When
// every fare is identical a single closed bin holds all trips.
func (s *QueryService) FareDistribution(ctx context.Context, bins int) ([]domain.FareBin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("%w: bins must be positive", domain.ErrInvalidParam)
	}

	minFare, maxFare, ok, err := s.aggRepo.FareRange(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.FareBin{}, nil
	}

	if maxFare <= minFare {
		count, err := s.aggRepo.FareBinCount(ctx, minFare, math.Nextafter(maxFare, math.Inf(1)))
		if err != nil {
			return nil, err
		}
		return []domain.FareBin{{BinStart: utils.Round(minFare, 2), BinEnd: utils.Round(maxFare, 2), Count: count}}, nil
	}

	width := (maxFare - minFare) / float64(bins)
	out := make([]domain.FareBin, 0, bins)
	for i := 0; i < bins; i++ {
		start := minFare + float64(i)*width
		end := start + width

		count, err := s.aggRepo.FareBinCount(ctx, start, end)
		if err != nil {
			return nil, err
		}

		out = append(out, domain.FareBin{
			BinStart: utils.Round(start, 2),
			BinEnd:   utils.Round(end, 2),
			Count:    count,
		})
	}

	return out, nil
}

func (s *QueryService) SearchTrips(ctx context.Context, req domain.SearchRequest) ([]domain.TripDetail, error) {
	n, err := s.limit(req.Limit)
	if err != nil {
		return nil, err
	}

	filter := domain.TripFilter{
		MinFare:           req.MinFare,
		MaxFare:           req.MaxFare,
		PickupLocationID:  req.PickupLocationID,
		DropoffLocationID: req.DropoffLocationID,
	}

	if req.StartDate != nil {
		start, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: start_date: %v", domain.ErrInvalidParam, err)
		}
		filter.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: end_date: %v", domain.ErrInvalidParam, err)
		}
		filter.EndDate = &end
	}

	return s.tripRepo.Search(ctx, filter, n)
}
