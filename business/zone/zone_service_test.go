package zone

import (
	"context"
	"testing"

	"nycTaxiExplorer/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockZoneRepo struct {
	mock.Mock
}

func (m *mockZoneRepo) FindAll(ctx context.Context) ([]domain.Zone, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Zone), args.Error(1)
}

func (m *mockZoneRepo) FindByID(ctx context.Context, id int64) (domain.Zone, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Zone), args.Error(1)
}

func (m *mockZoneRepo) FindByBorough(ctx context.Context, borough string) ([]domain.Zone, error) {
	args := m.Called(ctx, borough)
	return args.Get(0).([]domain.Zone), args.Error(1)
}

func (m *mockZoneRepo) Boroughs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockZoneRepo) Search(ctx context.Context, query string) ([]domain.Zone, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Zone), args.Error(1)
}

func (m *mockZoneRepo) Stats(ctx context.Context, id int64) (domain.ZoneStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ZoneStats), args.Error(1)
}

func TestGetWithStats(t *testing.T) {
	repo := new(mockZoneRepo)
	repo.On("FindByID", mock.Anything, int64(132)).Return(domain.Zone{LocationID: 132, Borough: "Queens", Zone: "JFK Airport"}, nil)
	repo.On("Stats", mock.Anything, int64(132)).Return(domain.ZoneStats{PickupCount: 10, DropoffCount: 4, AvgFare: 52.1}, nil)

	got, err := NewZoneService(repo).GetWithStats(context.Background(), 132)

	require.NoError(t, err)
	assert.Equal(t, "JFK Airport", got.Zone.Zone)
	assert.Equal(t, int64(10), got.PickupCount)
	assert.Equal(t, int64(4), got.DropoffCount)
}

func TestGetWithStats_NotFound(t *testing.T) {
	repo := new(mockZoneRepo)
	repo.On("FindByID", mock.Anything, int64(999)).Return(domain.Zone{}, domain.ErrZoneNotFound)

	_, err := NewZoneService(repo).GetWithStats(context.Background(), 999)

	assert.ErrorIs(t, err, domain.ErrZoneNotFound)
	repo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
}

func TestSearch(t *testing.T) {
	repo := new(mockZoneRepo)
	repo.On("Search", mock.Anything, "airport").Return([]domain.Zone{{LocationID: 1, Zone: "Newark Airport"}}, nil)
	svc := NewZoneService(repo)

	got, err := svc.Search(context.Background(), "  airport ")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}
