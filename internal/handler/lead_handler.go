package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/service"
)

const leadSuccessMessage = "Thank you for your submission! We will contact you shortly."

// LeadSubmitter accepts quote requests.
type LeadSubmitter interface {
	Submit(ctx context.Context, req dto.LeadRequest) (*entity.Lead, error)
}

// LeadHandler exposes the public lead capture endpoint.
type LeadHandler struct {
	leads LeadSubmitter
}

// NewLeadHandler constructs a LeadHandler.
func NewLeadHandler(leads LeadSubmitter) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// Submit handles POST /leads. The body may be JSON or a urlencoded form.
func (h *LeadHandler) Submit(c echo.Context) error {
	var req dto.LeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.Submit(c.Request().Context(), req)
	if err != nil {
		var verr *service.LeadValidationError
		if errors.As(err, &verr) {
			return Fail(c, http.StatusBadRequest, verr.Error(), map[string][]string{
				"missing": orEmpty(verr.Missing),
				"invalid": orEmpty(verr.Invalid),
			})
		}
		return Error(c, http.StatusInternalServerError, "failed to submit lead")
	}

	return Success(c, http.StatusCreated, leadSuccessMessage, lead)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
