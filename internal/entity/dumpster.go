package entity

// DumpsterSize is a container offered by exactly one company.
type DumpsterSize struct {
	ID             string   `json:"id"`
	CompanyID      string   `json:"company_id"`
	SizeYards      int      `json:"size_yards"`
	Description    *string  `json:"description,omitempty"`
	WeightLimitLbs *int     `json:"weight_limit_lbs,omitempty"`
	SuitableFor    []string `json:"suitable_for,omitempty"`
}

// DumpsterPrice ties a company's size to a service area with a price.
type DumpsterPrice struct {
	ID                 string   `json:"id"`
	CompanyID          string   `json:"company_id"`
	SizeID             string   `json:"size_id"`
	ServiceAreaID      string   `json:"service_area_id"`
	BasePrice          float64  `json:"base_price"`
	AdditionalDayPrice *float64 `json:"additional_day_price,omitempty"`
	WeightOveragePrice *float64 `json:"weight_overage_price,omitempty"`
	RentalPeriodDays   *int     `json:"rental_period_days,omitempty"`
}

// CityData is the bundle the rates API returns for one city/state query.
type CityData struct {
	ServiceAreas  []ServiceArea   `json:"service_areas"`
	Companies     []Company       `json:"companies"`
	DumpsterSizes []DumpsterSize  `json:"dumpster_sizes"`
	Prices        []DumpsterPrice `json:"prices"`
}
