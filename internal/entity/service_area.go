package entity

// ServiceArea is a city/state pair a company delivers to.
type ServiceArea struct {
	ID      string  `json:"id"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	ZipCode *string `json:"zip_code,omitempty"`
	County  *string `json:"county,omitempty"`
}

// City identifies a city page. Names are only unique together with the state.
type City struct {
	City  string `json:"city"`
	State string `json:"state"`
}
