package service

import (
	"context"
	"strings"

	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/viewmodel"
)

// RatesSource is the cached view of the remote rates API.
type RatesSource interface {
	Companies(ctx context.Context) []entity.Company
	ServiceAreas(ctx context.Context) []entity.ServiceArea
	DumpsterSizes(ctx context.Context) []entity.DumpsterSize
	Prices(ctx context.Context) []entity.DumpsterPrice
	Cities(ctx context.Context) []entity.City
	CityData(ctx context.Context, city, state string) *entity.CityData
}

// CityService builds city views from the rates source.
type CityService struct {
	rates RatesSource
}

// NewCityService constructs a CityService.
func NewCityService(rates RatesSource) *CityService {
	return &CityService{rates: rates}
}

// View returns the view for city. An empty city falls back to the first city
// the API lists.
func (s *CityService) View(ctx context.Context, city, state string) viewmodel.CityView {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	if city == "" {
		if def, ok := s.DefaultCity(ctx); ok {
			city, state = def.City, def.State
		}
	}
	if city == "" {
		return viewmodel.Build(city, state, nil)
	}
	return viewmodel.Build(city, state, s.rates.CityData(ctx, city, state))
}

// DefaultCity returns the first listed city, if any.
func (s *CityService) DefaultCity(ctx context.Context) (entity.City, bool) {
	cities := s.rates.Cities(ctx)
	if len(cities) == 0 {
		return entity.City{}, false
	}
	return cities[0], true
}

// Cities lists every city with data.
func (s *CityService) Cities(ctx context.Context) []entity.City {
	return s.rates.Cities(ctx)
}

// Companies lists every company.
func (s *CityService) Companies(ctx context.Context) []entity.Company {
	return s.rates.Companies(ctx)
}

// ServiceAreas lists every service area.
func (s *CityService) ServiceAreas(ctx context.Context) []entity.ServiceArea {
	return s.rates.ServiceAreas(ctx)
}

// DumpsterSizes lists every dumpster size.
func (s *CityService) DumpsterSizes(ctx context.Context) []entity.DumpsterSize {
	return s.rates.DumpsterSizes(ctx)
}

// Prices lists every price row.
func (s *CityService) Prices(ctx context.Context) []entity.DumpsterPrice {
	return s.rates.Prices(ctx)
}
