package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/entity"
)

// Catalog lists the rates API collections.
type Catalog interface {
	Companies(ctx context.Context) []entity.Company
	ServiceAreas(ctx context.Context) []entity.ServiceArea
	DumpsterSizes(ctx context.Context) []entity.DumpsterSize
	Prices(ctx context.Context) []entity.DumpsterPrice
}

// CatalogHandler passes the cached collections through. Upstream failures
// surface as empty lists, so every endpoint answers 200.
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Companies handles GET /api/companies.
func (h *CatalogHandler) Companies(c echo.Context) error {
	return Success(c, http.StatusOK, "companies retrieved", h.catalog.Companies(c.Request().Context()))
}

// ServiceAreas handles GET /api/service-areas.
func (h *CatalogHandler) ServiceAreas(c echo.Context) error {
	return Success(c, http.StatusOK, "service areas retrieved", h.catalog.ServiceAreas(c.Request().Context()))
}

// DumpsterSizes handles GET /api/dumpster-sizes.
func (h *CatalogHandler) DumpsterSizes(c echo.Context) error {
	return Success(c, http.StatusOK, "dumpster sizes retrieved", h.catalog.DumpsterSizes(c.Request().Context()))
}

// Prices handles GET /api/prices.
func (h *CatalogHandler) Prices(c echo.Context) error {
	return Success(c, http.StatusOK, "prices retrieved", h.catalog.Prices(c.Request().Context()))
}
