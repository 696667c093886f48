package service

import (
	"context"
	"testing"

	"github.com/octobees/rolloff-rates/internal/entity"
)

type stubRates struct {
	cities   []entity.City
	bundles  map[string]*entity.CityData
	requests []string
}

func (s *stubRates) Companies(ctx context.Context) []entity.Company       { return []entity.Company{} }
func (s *stubRates) ServiceAreas(ctx context.Context) []entity.ServiceArea { return []entity.ServiceArea{} }
func (s *stubRates) DumpsterSizes(ctx context.Context) []entity.DumpsterSize {
	return []entity.DumpsterSize{}
}
func (s *stubRates) Prices(ctx context.Context) []entity.DumpsterPrice { return []entity.DumpsterPrice{} }
func (s *stubRates) Cities(ctx context.Context) []entity.City {
	if s.cities == nil {
		return []entity.City{}
	}
	return s.cities
}

func (s *stubRates) CityData(ctx context.Context, city, state string) *entity.CityData {
	s.requests = append(s.requests, city+"|"+state)
	return s.bundles[city]
}

func TestCityService_View(t *testing.T) {
	rates := &stubRates{
		cities: []entity.City{{City: "Austin", State: "TX"}, {City: "Dallas", State: "TX"}},
		bundles: map[string]*entity.CityData{
			"Austin": {
				Companies: []entity.Company{{ID: "c1", Name: "Acme"}},
				Prices:    []entity.DumpsterPrice{{CompanyID: "c1", BasePrice: 300}},
			},
		},
	}
	svc := NewCityService(rates)

	view := svc.View(context.Background(), " Austin ", "TX")
	if view.Unavailable || len(view.Companies) != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}

	fallback := svc.View(context.Background(), "", "")
	if fallback.City != "Austin" || fallback.State != "TX" {
		t.Fatalf("expected default city, got %s/%s", fallback.City, fallback.State)
	}

	missing := svc.View(context.Background(), "Dallas", "TX")
	if !missing.Unavailable {
		t.Fatalf("expected unavailable view for missing bundle")
	}
}

func TestCityService_ViewWithoutCities(t *testing.T) {
	rates := &stubRates{}
	view := NewCityService(rates).View(context.Background(), "", "")
	if !view.Unavailable {
		t.Fatalf("expected unavailable view")
	}
	if len(rates.requests) != 0 {
		t.Fatalf("no bundle should be requested without a city, got %v", rates.requests)
	}
}
