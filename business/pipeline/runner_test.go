package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"nycTaxiExplorer/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockZoneWriter struct {
	mock.Mock
}

func (m *mockZoneWriter) Upsert(ctx context.Context, zones []domain.Zone) error {
	return m.Called(ctx, zones).Error(0)
}

type mockTripWriter struct {
	mock.Mock
}

func (m *mockTripWriter) CreateInBatches(ctx context.Context, trips []domain.Trip, batchSize int) error {
	return m.Called(ctx, trips, batchSize).Error(0)
}

func (m *mockTripWriter) Truncate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockRunRecorder struct {
	mock.Mock
}

func (m *mockRunRecorder) Create(ctx context.Context, run *domain.PipelineRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRunRecorder) Update(ctx context.Context, run *domain.PipelineRun) error {
	return m.Called(ctx, run).Error(0)
}

type stubSource struct {
	verifyErr error
	trips     []RawTrip
	zones     []ZoneRow
}

func (s stubSource) VerifyFiles() error { return s.verifyErr }

func (s stubSource) Load(_ context.Context, sample int) ([]RawTrip, []ZoneRow, error) {
	trips := s.trips
	if sample > 0 && sample < len(trips) {
		trips = trips[:sample]
	}
	return trips, s.zones, nil
}

func TestNormalizeZones(t *testing.T) {
	zones := NormalizeZones([]ZoneRow{
		{LocationID: 1, Borough: "EWR", Zone: "Newark Airport", ServiceZone: "EWR"},
		{LocationID: 264, Borough: "Unknown", Zone: "N/A", ServiceZone: "N/A"},
		{LocationID: 265, Borough: " ", Zone: "Outside of NYC", ServiceZone: ""},
	})

	require.Len(t, zones, 3)
	assert.Equal(t, "EWR", *zones[0].ServiceZone)
	assert.Equal(t, "Unknown", zones[1].Zone)
	assert.Nil(t, zones[1].ServiceZone)
	assert.Equal(t, "Unknown", zones[2].Borough)
	assert.Equal(t, "Outside of NYC", zones[2].Zone)
	assert.Nil(t, zones[2].ServiceZone)
}

func TestSeeder_Batches(t *testing.T) {
	zw := new(mockZoneWriter)
	tw := new(mockTripWriter)
	trips := Engineer([]RawTrip{goodTrip(0), goodTrip(time.Hour), goodTrip(2 * time.Hour)})

	zw.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tw.On("Truncate", mock.Anything).Return(nil)
	tw.On("CreateInBatches", mock.Anything, mock.MatchedBy(func(b []domain.Trip) bool { return len(b) == 2 }), 2).Return(nil).Once()
	tw.On("CreateInBatches", mock.Anything, mock.MatchedBy(func(b []domain.Trip) bool { return len(b) == 1 }), 2).Return(nil).Once()

	err := NewSeeder(zw, tw, 2).Seed(context.Background(), []domain.Zone{{LocationID: 1}}, trips, true)

	require.NoError(t, err)
	zw.AssertExpectations(t)
	tw.AssertExpectations(t)
}

func TestSeeder_ZoneFailureStops(t *testing.T) {
	zw := new(mockZoneWriter)
	tw := new(mockTripWriter)
	zw.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("constraint"))

	err := NewSeeder(zw, tw, 10).Seed(context.Background(), nil, nil, false)

	assert.EqualError(t, err, "constraint")
	tw.AssertNotCalled(t, "CreateInBatches", mock.Anything, mock.Anything, mock.Anything)
}

func newRunner(src Source, zw *mockZoneWriter, tw *mockTripWriter, rr *mockRunRecorder) *Runner {
	r := NewRunner(src, NewSeeder(zw, tw, 100), rr)
	r.now = func() time.Time { return base }
	return r
}

func TestRunner_Succeeds(t *testing.T) {
	dirty := goodTrip(3 * time.Hour)
	dirty.FareAmount = f(900)
	src := stubSource{
		trips: []RawTrip{goodTrip(0), goodTrip(time.Hour), dirty},
		zones: []ZoneRow{{LocationID: 161, Borough: "Manhattan", Zone: "Midtown Center"}},
	}

	zw, tw, rr := new(mockZoneWriter), new(mockTripWriter), new(mockRunRecorder)
	rr.On("Create", mock.Anything, mock.Anything).Return(nil)
	rr.On("Update", mock.Anything, mock.Anything).Return(nil)
	zw.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	tw.On("CreateInBatches", mock.Anything, mock.Anything, 100).Return(nil)

	run, err := newRunner(src, zw, tw, rr).Run(context.Background(), RunOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.PipelineStatusSucceeded, run.Status)
	assert.Equal(t, int64(3), run.OriginalCount)
	assert.Equal(t, int64(2), run.FinalCount)
	assert.Equal(t, int64(1), run.RemovedCount)
	assert.Equal(t, []string{"Removed 1 fare outliers"}, run.Log["cleaning"])
	require.NotNil(t, run.FinishedAt)
	tw.AssertNotCalled(t, "Truncate", mock.Anything)
	rr.AssertExpectations(t)
}

func TestRunner_MissingFiles(t *testing.T) {
	zw, tw, rr := new(mockZoneWriter), new(mockTripWriter), new(mockRunRecorder)
	rr.On("Create", mock.Anything, mock.Anything).Return(nil)
	rr.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.PipelineRun) bool {
		return r.Status == domain.PipelineStatusFailed
	})).Return(nil)

	run, err := newRunner(stubSource{verifyErr: ErrMissingFile}, zw, tw, rr).Run(context.Background(), RunOptions{Sample: 10})

	assert.ErrorIs(t, err, ErrMissingFile)
	assert.Equal(t, domain.PipelineStatusFailed, run.Status)
	assert.Equal(t, ErrMissingFile.Error(), run.Log["error"])
	rr.AssertExpectations(t)
	zw.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRunner_ValidationFailure(t *testing.T) {
	// 20 seconds rounds to a 0 minute duration, which validation rejects
	blip := goodTrip(0)
	blip.DropoffAt = ts(blip.PickupAt.Add(20 * time.Second))

	zw, tw, rr := new(mockZoneWriter), new(mockTripWriter), new(mockRunRecorder)
	rr.On("Create", mock.Anything, mock.Anything).Return(nil)
	rr.On("Update", mock.Anything, mock.Anything).Return(nil)

	run, err := newRunner(stubSource{trips: []RawTrip{blip}}, zw, tw, rr).Run(context.Background(), RunOptions{})

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, domain.PipelineStatusFailed, run.Status)
	assert.NotEmpty(t, run.Log["validation_issues"])
	tw.AssertNotCalled(t, "CreateInBatches", mock.Anything, mock.Anything, mock.Anything)
}
