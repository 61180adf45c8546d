package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nycTaxiExplorer/business/anomaly"
	"nycTaxiExplorer/business/topk"
	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/cache"
	"nycTaxiExplorer/pkg/logger"
	"nycTaxiExplorer/pkg/metrics"
	"nycTaxiExplorer/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const (
	insightsK        = 3
	slowestHourCount = 3
	unknownName      = "Unknown"
)

type AggregateRepository interface {
	PickupCounts(ctx context.Context) ([]domain.ZoneValue, error)
	DropoffCounts(ctx context.Context) ([]domain.ZoneValue, error)
	RevenueByPickup(ctx context.Context) ([]domain.ZoneValue, error)
	RouteCounts(ctx context.Context) ([]domain.RouteCount, error)
	SpeedByHour(ctx context.Context) ([]domain.SpeedPattern, error)
	RevenueByHour(ctx context.Context) ([]domain.HourlyRevenue, error)
	BoroughComparison(ctx context.Context) ([]domain.BoroughComparison, error)
}

type ZoneRepository interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Zone, error)
}

type TripSampler interface {
	Sample(ctx context.Context, n int) ([]domain.AnomalyCandidate, error)
}

type Options struct {
	DefaultK          int
	ZThreshold        float64
	AnomalySampleSize int
}

// AnomalyReport pairs the per-pass records with their roll-up.
type AnomalyReport struct {
	Summary   anomaly.Summary `json:"summary"`
	Anomalies anomaly.Result  `json:"anomalies"`
}

type AnalyticsService struct {
	aggRepo    AggregateRepository
	zoneRepo   ZoneRepository
	sampler    TripSampler
	cache      cache.Cache
	detector   *anomaly.Detector
	defaultK   int
	sampleSize int
}

func NewAnalyticsService(aggRepo AggregateRepository, zoneRepo ZoneRepository, sampler TripSampler, c cache.Cache, opts Options) *AnalyticsService {
	if c == nil {
		c = cache.Nop{}
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = topk.DefaultK
	}
	if opts.ZThreshold <= 0 {
		opts.ZThreshold = anomaly.DefaultZThreshold
	}

	return &AnalyticsService{
		aggRepo:    aggRepo,
		zoneRepo:   zoneRepo,
		sampler:    sampler,
		cache:      c,
		detector:   anomaly.NewDetector(opts.ZThreshold),
		defaultK:   opts.DefaultK,
		sampleSize: opts.AnomalySampleSize,
	}
}

func (s *AnalyticsService) DefaultK() int {
	return s.defaultK
}

func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.AnalyticsDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// cached serves key from the cache or computes and stores it. Cache failures
// are logged and never fail the request.
func cached[T any](ctx context.Context, c cache.Cache, op, key string, compute func() (T, error)) (T, error) {
	var out T
	hit, err := c.Get(ctx, key, &out)
	if err != nil {
		logger.Warn("Analytics cache read failed", "key", key, "error", err)
	}
	if hit {
		metrics.AnalyticsCacheHits.WithLabelValues(op).Inc()
		return out, nil
	}

	out, err = compute()
	if err != nil {
		return out, err
	}

	if err := c.Set(ctx, key, out); err != nil {
		logger.Warn("Analytics cache write failed", "key", key, "error", err)
	}

	return out, nil
}

func zoneEntries(rows []domain.ZoneValue) []topk.Scored[int64] {
	entries := make([]topk.Scored[int64], len(rows))
	for i, r := range rows {
		entries[i] = topk.Scored[int64]{ID: r.LocationID, Score: r.Value}
	}
	return entries
}

func (s *AnalyticsService) zoneNames(ctx context.Context, ids []int64) (map[int64]domain.Zone, error) {
	zones, err := s.zoneRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve zone names: %w", err)
	}
	return zones, nil
}

func nameOf(zones map[int64]domain.Zone, id int64) (zone, borough string) {
	z, ok := zones[id]
	if !ok {
		return unknownName, unknownName
	}
	return z.Zone, z.Borough
}

// TopZones ranks zones by pickups, dropoffs or pickup revenue with the top-k
// selector and attaches zone names.
func (s *AnalyticsService) TopZones(ctx context.Context, k int, metric string) ([]domain.TopZone, error) {
	defer observe("top_zones")()

	if k < 0 {
		return nil, fmt.Errorf("%w: k must not be negative", domain.ErrInvalidParam)
	}

	var load func(context.Context) ([]domain.ZoneValue, error)
	switch metric {
	case domain.MetricPickups:
		load = s.aggRepo.PickupCounts
	case domain.MetricDropoffs:
		load = s.aggRepo.DropoffCounts
	case domain.MetricRevenue:
		load = s.aggRepo.RevenueByPickup
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidParam, metric)
	}

	key := fmt.Sprintf("top-zones:%s:%d", metric, k)
	return cached(ctx, s.cache, "top_zones", key, func() ([]domain.TopZone, error) {
		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}

		selector := topk.NewSelector(k)
		var ranked []topk.Scored[int64]
		switch metric {
		case domain.MetricPickups:
			ranked = selector.TopPickups(zoneEntries(rows))
		case domain.MetricDropoffs:
			ranked = selector.TopDropoffs(zoneEntries(rows))
		default:
			ranked = selector.TopByRevenue(zoneEntries(rows))
		}

		ids := make([]int64, len(ranked))
		for i, r := range ranked {
			ids[i] = r.ID
		}
		zones, err := s.zoneNames(ctx, ids)
		if err != nil {
			return nil, err
		}

		out := make([]domain.TopZone, len(ranked))
		for i, r := range ranked {
			value := r.Score
			if metric == domain.MetricRevenue {
				value = utils.Round(value, 2)
			}
			zone, borough := nameOf(zones, r.ID)
			out[i] = domain.TopZone{
				LocationID: r.ID,
				Zone:       zone,
				Borough:    borough,
				Value:      value,
				Metric:     metric,
			}
		}

		return out, nil
	})
}

// TopRoutes ranks (pickup, dropoff) pairs by trip count. k == 0 uses the
// service default.
func (s *AnalyticsService) TopRoutes(ctx context.Context, k int) ([]domain.TopRoute, error) {
	defer observe("top_routes")()

	if k < 0 {
		return nil, fmt.Errorf("%w: k must not be negative", domain.ErrInvalidParam)
	}

	key := fmt.Sprintf("top-routes:%d", k)
	return cached(ctx, s.cache, "top_routes", key, func() ([]domain.TopRoute, error) {
		rows, err := s.aggRepo.RouteCounts(ctx)
		if err != nil {
			return nil, err
		}

		entries := make([]topk.Scored[topk.Route], len(rows))
		for i, r := range rows {
			entries[i] = topk.Scored[topk.Route]{
				ID:    topk.Route{PickupID: r.PickupLocationID, DropoffID: r.DropoffLocationID},
				Score: float64(r.TripCount),
			}
		}

		ranked := topk.NewSelector(s.defaultK).TopRoutes(entries, k)

		ids := make([]int64, 0, 2*len(ranked))
		for _, r := range ranked {
			ids = append(ids, r.ID.PickupID, r.ID.DropoffID)
		}
		zones, err := s.zoneNames(ctx, ids)
		if err != nil {
			return nil, err
		}

		out := make([]domain.TopRoute, len(ranked))
		for i, r := range ranked {
			puZone, puBorough := nameOf(zones, r.ID.PickupID)
			doZone, doBorough := nameOf(zones, r.ID.DropoffID)
			out[i] = domain.TopRoute{
				PickupLocationID:  r.ID.PickupID,
				PickupZone:        puZone,
				PickupBorough:     puBorough,
				DropoffLocationID: r.ID.DropoffID,
				DropoffZone:       doZone,
				DropoffBorough:    doBorough,
				TripCount:         int64(r.Score),
			}
		}

		return out, nil
	})
}

// DetectAnomalies runs the detector over a fresh random sample of trips.
// sampleSize <= 0 uses the configured size.
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, sampleSize int) (AnomalyReport, error) {
	defer observe("anomalies")()

	if sampleSize <= 0 {
		sampleSize = s.sampleSize
	}

	rows, err := s.sampler.Sample(ctx, sampleSize)
	if err != nil {
		return AnomalyReport{}, err
	}

	trips := make([]anomaly.Trip, len(rows))
	for i, r := range rows {
		trips[i] = anomaly.Trip{
			TripID:          r.TripID,
			FareAmount:      r.FareAmount,
			TripDistance:    r.TripDistance,
			TripDurationMin: r.TripDurationMin,
		}
	}

	res := s.detector.DetectAll(trips)
	for _, list := range [][]anomaly.Record{res.FareAnomalies, res.SpeedAnomalies, res.MismatchAnomalies} {
		for _, rec := range list {
			metrics.AnomaliesFlagged.WithLabelValues(string(rec.Reason)).Inc()
		}
	}

	logger.Debug("Anomaly detection finished", "sample", len(trips), "flagged", res.TotalAnomalousTrips)

	return AnomalyReport{
		Summary:   anomaly.SummaryOf(trips, res),
		Anomalies: res,
	}, nil
}

func (s *AnalyticsService) SpeedPatterns(ctx context.Context) ([]domain.SpeedPattern, error) {
	defer observe("speed_patterns")()

	return cached(ctx, s.cache, "speed_patterns", "speed-patterns", func() ([]domain.SpeedPattern, error) {
		rows, err := s.aggRepo.SpeedByHour(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].AvgSpeed = utils.Round(rows[i].AvgSpeed, 2)
		}
		return rows, nil
	})
}

func (s *AnalyticsService) RevenueByHour(ctx context.Context) ([]domain.HourlyRevenue, error) {
	defer observe("revenue_hourly")()

	return cached(ctx, s.cache, "revenue_hourly", "revenue-hourly", func() ([]domain.HourlyRevenue, error) {
		rows, err := s.aggRepo.RevenueByHour(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].TotalRevenue = utils.Round(rows[i].TotalRevenue, 2)
			rows[i].AvgFare = utils.Round(rows[i].AvgFare, 2)
		}
		return rows, nil
	})
}

func (s *AnalyticsService) CompareBoroughs(ctx context.Context) ([]domain.BoroughComparison, error) {
	defer observe("borough_comparison")()

	return cached(ctx, s.cache, "borough_comparison", "borough-comparison", func() ([]domain.BoroughComparison, error) {
		rows, err := s.aggRepo.BoroughComparison(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].AvgFare = utils.Round(rows[i].AvgFare, 2)
			rows[i].AvgDistance = utils.Round(rows[i].AvgDistance, 2)
			rows[i].AvgDuration = utils.Round(rows[i].AvgDuration, 1)
			rows[i].AvgSpeed = utils.Round(rows[i].AvgSpeed, 1)
			rows[i].TotalRevenue = utils.Round(rows[i].TotalRevenue, 2)
		}
		return rows, nil
	})
}

// Insights bundles the headline findings. The parts are independent, so they
// are computed concurrently.
func (s *AnalyticsService) Insights(ctx context.Context) (domain.Insights, error) {
	defer observe("insights")()

	return cached(ctx, s.cache, "insights", "insights", func() (domain.Insights, error) {
		var out domain.Insights
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zones, err := s.TopZones(gctx, insightsK, domain.MetricPickups)
			out.TopPickupZones = zones
			return err
		})
		g.Go(func() error {
			zones, err := s.TopZones(gctx, insightsK, domain.MetricRevenue)
			out.TopRevenueZones = zones
			return err
		})
		g.Go(func() error {
			routes, err := s.TopRoutes(gctx, insightsK)
			out.TopRoutes = routes
			return err
		})
		g.Go(func() error {
			boroughs, err := s.CompareBoroughs(gctx)
			out.BoroughComparison = boroughs
			return err
		})
		g.Go(func() error {
			speeds, err := s.SpeedPatterns(gctx)
			if err != nil {
				return err
			}
			out.SlowestHours = slowestHours(speeds, slowestHourCount)
			return nil
		})

		if err := g.Wait(); err != nil {
			return domain.Insights{}, fmt.Errorf("failed to build insights: %w", err)
		}

		return out, nil
	})
}

func slowestHours(speeds []domain.SpeedPattern, n int) []domain.SpeedPattern {
	sorted := make([]domain.SpeedPattern, len(speeds))
	copy(sorted, speeds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgSpeed < sorted[j].AvgSpeed
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
