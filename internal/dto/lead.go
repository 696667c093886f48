package dto

import "time"

// LeadRequest is the quote form submission. It binds from JSON or form posts.
type LeadRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Address string `json:"address" form:"address"`
	City    string `json:"city" form:"city"`
	State   string `json:"state" form:"state"`
	Size    string `json:"size" form:"size"`
	Message string `json:"message" form:"message"`
}

// LeadListFilter contains query parameters for the admin lead listing.
type LeadListFilter struct {
	Q       string
	City    string
	State   string
	Since   *time.Time
	Page    int
	PerPage int
}
