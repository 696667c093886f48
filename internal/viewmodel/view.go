package viewmodel

import (
	"github.com/octobees/rolloff-rates/internal/entity"
)

// SizeView is a priced size together with its displayed range.
type SizeView struct {
	SizePrices
	PriceRange PriceRange `json:"range"`
}

// CityView is everything a renderer needs for one city. Unavailable is set when
// the bundle could not be loaded; the sequences are then empty.
type CityView struct {
	City         string               `json:"city"`
	State        string               `json:"state"`
	Unavailable  bool                 `json:"unavailable"`
	ServiceAreas []entity.ServiceArea `json:"service_areas"`
	Companies    []CompanyPrice       `json:"companies"`
	Sizes        []SizeView           `json:"sizes"`
	SizeOptions  []int                `json:"size_options"`

	Data *entity.CityData `json:"-"`
}

// Build computes the view for a bundle. A nil bundle produces an unavailable view.
func Build(city, state string, data *entity.CityData) CityView {
	view := CityView{
		City:         city,
		State:        state,
		ServiceAreas: make([]entity.ServiceArea, 0),
		Companies:    make([]CompanyPrice, 0),
		Sizes:        make([]SizeView, 0),
	}
	if data == nil {
		view.Unavailable = true
		view.SizeOptions = SizeOptions(nil)
		return view
	}

	view.Data = data
	if data.ServiceAreas != nil {
		view.ServiceAreas = data.ServiceAreas
	}
	view.Companies = LowestPriceByCompany(*data)

	sizes := SizesWithPrices(*data)
	for _, s := range sizes {
		view.Sizes = append(view.Sizes, SizeView{SizePrices: s, PriceRange: s.Range()})
	}
	view.SizeOptions = SizeOptions(sizes)
	return view
}
