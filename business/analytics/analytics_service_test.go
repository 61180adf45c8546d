package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"nycTaxiExplorer/business/anomaly"
	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAggRepo struct {
	mock.Mock
}

func (m *mockAggRepo) PickupCounts(ctx context.Context) ([]domain.ZoneValue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ZoneValue), args.Error(1)
}

func (m *mockAggRepo) DropoffCounts(ctx context.Context) ([]domain.ZoneValue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ZoneValue), args.Error(1)
}

func (m *mockAggRepo) RevenueByPickup(ctx context.Context) ([]domain.ZoneValue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ZoneValue), args.Error(1)
}

func (m *mockAggRepo) RouteCounts(ctx context.Context) ([]domain.RouteCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RouteCount), args.Error(1)
}

func (m *mockAggRepo) SpeedByHour(ctx context.Context) ([]domain.SpeedPattern, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SpeedPattern), args.Error(1)
}

func (m *mockAggRepo) RevenueByHour(ctx context.Context) ([]domain.HourlyRevenue, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.HourlyRevenue), args.Error(1)
}

func (m *mockAggRepo) BoroughComparison(ctx context.Context) ([]domain.BoroughComparison, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BoroughComparison), args.Error(1)
}

type mockZoneRepo struct {
	mock.Mock
}

func (m *mockZoneRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Zone, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]domain.Zone), args.Error(1)
}

type mockSampler struct {
	mock.Mock
}

func (m *mockSampler) Sample(ctx context.Context, n int) ([]domain.AnomalyCandidate, error) {
	args := m.Called(ctx, n)
	return args.Get(0).([]domain.AnomalyCandidate), args.Error(1)
}

var zoneNames = map[int64]domain.Zone{
	132: {LocationID: 132, Borough: "Queens", Zone: "JFK Airport"},
	161: {LocationID: 161, Borough: "Manhattan", Zone: "Midtown Center"},
	237: {LocationID: 237, Borough: "Manhattan", Zone: "Upper East Side South"},
}

func newService(agg *mockAggRepo, zones *mockZoneRepo, sampler *mockSampler, c cache.Cache) *AnalyticsService {
	return NewAnalyticsService(agg, zones, sampler, c, Options{DefaultK: 10, ZThreshold: 3.0, AnomalySampleSize: 500})
}

func TestTopZones_Pickups(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("PickupCounts", mock.Anything).Return([]domain.ZoneValue{
		{LocationID: 132, Value: 40},
		{LocationID: 161, Value: 90},
		{LocationID: 237, Value: 75},
		{LocationID: 999, Value: 1},
	}, nil)
	zones.On("FindByIDs", mock.Anything, []int64{161, 237}).Return(zoneNames, nil)

	got, err := newService(agg, zones, new(mockSampler), nil).TopZones(context.Background(), 2, domain.MetricPickups)

	require.NoError(t, err)
	assert.Equal(t, []domain.TopZone{
		{LocationID: 161, Zone: "Midtown Center", Borough: "Manhattan", Value: 90, Metric: "pickups"},
		{LocationID: 237, Zone: "Upper East Side South", Borough: "Manhattan", Value: 75, Metric: "pickups"},
	}, got)
	agg.AssertExpectations(t)
	zones.AssertExpectations(t)
}

func TestTopZones_RevenueRoundedAndUnknownZone(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("RevenueByPickup", mock.Anything).Return([]domain.ZoneValue{
		{LocationID: 132, Value: 1234.5678},
		{LocationID: 500, Value: 99.999},
	}, nil)
	zones.On("FindByIDs", mock.Anything, []int64{132, 500}).Return(zoneNames, nil)

	got, err := newService(agg, zones, new(mockSampler), nil).TopZones(context.Background(), 5, domain.MetricRevenue)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1234.57, got[0].Value)
	assert.Equal(t, "JFK Airport", got[0].Zone)
	assert.Equal(t, 100.0, got[1].Value)
	assert.Equal(t, "Unknown", got[1].Zone)
	assert.Equal(t, "Unknown", got[1].Borough)
}

func TestTopZones_InvalidArguments(t *testing.T) {
	svc := newService(new(mockAggRepo), new(mockZoneRepo), new(mockSampler), nil)

	_, err := svc.TopZones(context.Background(), 5, "tips")
	assert.ErrorIs(t, err, domain.ErrInvalidParam)

	_, err = svc.TopZones(context.Background(), -1, domain.MetricPickups)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestTopZones_RepositoryError(t *testing.T) {
	agg := new(mockAggRepo)
	agg.On("DropoffCounts", mock.Anything).Return([]domain.ZoneValue(nil), errors.New("connection reset"))

	_, err := newService(agg, new(mockZoneRepo), new(mockSampler), nil).TopZones(context.Background(), 5, domain.MetricDropoffs)

	assert.EqualError(t, err, "connection reset")
}

func TestTopZones_ServedFromCache(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("PickupCounts", mock.Anything).Return([]domain.ZoneValue{{LocationID: 132, Value: 3}}, nil).Once()
	zones.On("FindByIDs", mock.Anything, []int64{132}).Return(zoneNames, nil).Once()

	svc := newService(agg, zones, new(mockSampler), cache.NewMemory(time.Minute))

	first, err := svc.TopZones(context.Background(), 3, domain.MetricPickups)
	require.NoError(t, err)
	second, err := svc.TopZones(context.Background(), 3, domain.MetricPickups)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	agg.AssertNumberOfCalls(t, "PickupCounts", 1)
}

func TestTopRoutes_DefaultK(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("RouteCounts", mock.Anything).Return([]domain.RouteCount{
		{PickupLocationID: 132, DropoffLocationID: 161, TripCount: 12},
		{PickupLocationID: 161, DropoffLocationID: 237, TripCount: 30},
		{PickupLocationID: 237, DropoffLocationID: 161, TripCount: 7},
	}, nil)
	zones.On("FindByIDs", mock.Anything, mock.Anything).Return(zoneNames, nil)

	got, err := newService(agg, zones, new(mockSampler), nil).TopRoutes(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(30), got[0].TripCount)
	assert.Equal(t, "Midtown Center", got[0].PickupZone)
	assert.Equal(t, "Upper East Side South", got[0].DropoffZone)
	assert.Equal(t, int64(12), got[1].TripCount)
	assert.Equal(t, int64(7), got[2].TripCount)
}

func TestDetectAnomalies(t *testing.T) {
	sampler := new(mockSampler)
	sampler.On("Sample", mock.Anything, 500).Return([]domain.AnomalyCandidate{
		{TripID: 1, FareAmount: 30, TripDistance: 10, TripDurationMin: 5},
		{TripID: 2, FareAmount: 10, TripDistance: 2, TripDurationMin: 8},
		{TripID: 3, FareAmount: 10, TripDistance: 2, TripDurationMin: 8},
	}, nil)

	report, err := newService(new(mockAggRepo), new(mockZoneRepo), sampler, nil).DetectAnomalies(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.TotalTrips)
	assert.Equal(t, 1, report.Summary.TotalAnomalies)
	assert.Equal(t, 33.33, report.Summary.AnomalyRatePercent)
	require.Len(t, report.Anomalies.SpeedAnomalies, 1)
	assert.Equal(t, anomaly.ReasonSpeedTooHigh, report.Anomalies.SpeedAnomalies[0].Reason)
	assert.Equal(t, int64(1), report.Anomalies.SpeedAnomalies[0].TripID)
	sampler.AssertExpectations(t)
}

func TestRoundedAggregates(t *testing.T) {
	agg := new(mockAggRepo)
	agg.On("RevenueByHour", mock.Anything).Return([]domain.HourlyRevenue{
		{Hour: 8, TripCount: 3, TotalRevenue: 45.126, AvgFare: 15.042},
	}, nil)
	agg.On("BoroughComparison", mock.Anything).Return([]domain.BoroughComparison{
		{Borough: "Queens", TripCount: 2, AvgFare: 40.555, AvgDistance: 12.346, AvgDuration: 31.25, AvgSpeed: 22.44, TotalRevenue: 81.111},
	}, nil)
	svc := newService(agg, new(mockZoneRepo), new(mockSampler), nil)

	revenue, err := svc.RevenueByHour(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45.13, revenue[0].TotalRevenue)
	assert.Equal(t, 15.04, revenue[0].AvgFare)

	boroughs, err := svc.CompareBoroughs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.35, boroughs[0].AvgDistance)
	assert.Equal(t, 31.2, boroughs[0].AvgDuration)
	assert.Equal(t, 22.4, boroughs[0].AvgSpeed)
	assert.Equal(t, 81.11, boroughs[0].TotalRevenue)
}

func TestInsights(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("PickupCounts", mock.Anything).Return([]domain.ZoneValue{{LocationID: 132, Value: 5}, {LocationID: 161, Value: 9}}, nil)
	agg.On("RevenueByPickup", mock.Anything).Return([]domain.ZoneValue{{LocationID: 132, Value: 300}, {LocationID: 161, Value: 90}}, nil)
	agg.On("RouteCounts", mock.Anything).Return([]domain.RouteCount{{PickupLocationID: 132, DropoffLocationID: 161, TripCount: 4}}, nil)
	agg.On("BoroughComparison", mock.Anything).Return([]domain.BoroughComparison{{Borough: "Manhattan", TripCount: 9}}, nil)
	agg.On("SpeedByHour", mock.Anything).Return([]domain.SpeedPattern{
		{Hour: 3, AvgSpeed: 25},
		{Hour: 8, AvgSpeed: 9.5},
		{Hour: 12, AvgSpeed: 11},
		{Hour: 17, AvgSpeed: 8.25},
		{Hour: 22, AvgSpeed: 18},
	}, nil)
	zones.On("FindByIDs", mock.Anything, mock.Anything).Return(zoneNames, nil)

	got, err := newService(agg, zones, new(mockSampler), nil).Insights(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(161), got.TopPickupZones[0].LocationID)
	assert.Equal(t, int64(132), got.TopRevenueZones[0].LocationID)
	assert.Len(t, got.TopRoutes, 1)
	assert.Len(t, got.BoroughComparison, 1)
	require.Len(t, got.SlowestHours, 3)
	assert.Equal(t, []int{17, 8, 12}, []int{got.SlowestHours[0].Hour, got.SlowestHours[1].Hour, got.SlowestHours[2].Hour})
}

func TestInsights_PropagatesError(t *testing.T) {
	agg := new(mockAggRepo)
	zones := new(mockZoneRepo)
	agg.On("PickupCounts", mock.Anything).Return([]domain.ZoneValue{}, nil)
	agg.On("RevenueByPickup", mock.Anything).Return([]domain.ZoneValue{}, nil)
	agg.On("RouteCounts", mock.Anything).Return([]domain.RouteCount{}, nil)
	agg.On("BoroughComparison", mock.Anything).Return([]domain.BoroughComparison(nil), errors.New("timeout"))
	agg.On("SpeedByHour", mock.Anything).Return([]domain.SpeedPattern{}, nil)
	zones.On("FindByIDs", mock.Anything, mock.Anything).Return(map[int64]domain.Zone{}, nil)

	_, err := newService(agg, zones, new(mockSampler), nil).Insights(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestSlowestHours_DoesNotMutateInput(t *testing.T) {
	in := []domain.SpeedPattern{{Hour: 1, AvgSpeed: 20}, {Hour: 2, AvgSpeed: 10}}

	got := slowestHours(in, 3)

	assert.Equal(t, 2, got[0].Hour)
	assert.Equal(t, 1, in[0].Hour)
}
