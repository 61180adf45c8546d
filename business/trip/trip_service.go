package trip

import (
	"context"
	"fmt"

	"nycTaxiExplorer/domain"
)

const listLimit = 1000

type TripRepository interface {
	FindByID(ctx context.Context, id int64) (domain.TripDetail, error)
	Filter(ctx context.Context, filter domain.TripFilter, limit, offset int) ([]domain.Trip, error)
	Count(ctx context.Context, filter domain.TripFilter) (int64, error)
	FindByHour(ctx context.Context, hour, limit int) ([]domain.Trip, error)
	FindByZone(ctx context.Context, zoneID int64, locationType string, limit int) ([]domain.Trip, error)
	DateRange(ctx context.Context) (domain.DateRange, error)
}

type TripService struct {
	tripRepo       TripRepository
	defaultPerPage int
	maxPerPage     int
}

func NewTripService(tripRepo TripRepository, defaultPerPage, maxPerPage int) *TripService {
	return &TripService{
		tripRepo:       tripRepo,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

// List returns one page of filtered trips, newest first.
func (s *TripService) List(ctx context.Context, filter domain.TripFilter, page, perPage int) (domain.TripPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.defaultPerPage
	}
	if perPage > s.maxPerPage {
		perPage = s.maxPerPage
	}

	trips, err := s.tripRepo.Filter(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return domain.TripPage{}, err
	}

	total, err := s.tripRepo.Count(ctx, filter)
	if err != nil {
		return domain.TripPage{}, err
	}

	return domain.TripPage{
		Trips: trips,
		Pagination: domain.Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   (total + int64(perPage) - 1) / int64(perPage),
		},
	}, nil
}

func (s *TripService) GetByID(ctx context.Context, id int64) (domain.TripDetail, error) {
	if id <= 0 {
		return domain.TripDetail{}, domain.ErrTripNotFound
	}
	return s.tripRepo.FindByID(ctx, id)
}

func (s *TripService) ByHour(ctx context.Context, hour int) ([]domain.Trip, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: hour must be between 0 and 23", domain.ErrInvalidParam)
	}
	return s.tripRepo.FindByHour(ctx, hour, listLimit)
}

func (s *TripService) ByZone(ctx context.Context, zoneID int64, locationType string) ([]domain.Trip, error) {
	if locationType == "" {
		locationType = domain.LocationPickup
	}
	if locationType != domain.LocationPickup && locationType != domain.LocationDropoff {
		return nil, fmt.Errorf("%w: type must be pickup or dropoff", domain.ErrInvalidParam)
	}
	return s.tripRepo.FindByZone(ctx, zoneID, locationType, listLimit)
}

func (s *TripService) DateRange(ctx context.Context) (domain.DateRange, error) {
	return s.tripRepo.DateRange(ctx)
}
