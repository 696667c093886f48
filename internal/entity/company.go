package entity

// Company is a dumpster rental provider as served by the rates API.
type Company struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Website     string  `json:"website"`
	LogoURL     *string `json:"logo_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}
