package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/render"
	"github.com/octobees/rolloff-rates/internal/viewmodel"
)

// CityViewer builds city views from the cached rates API.
type CityViewer interface {
	View(ctx context.Context, city, state string) viewmodel.CityView
	Cities(ctx context.Context) []entity.City
}

// CityHandler serves city data as JSON, full pages and embeddable fragments.
type CityHandler struct {
	cities   CityViewer
	renderer *render.Renderer
}

// NewCityHandler constructs a CityHandler.
func NewCityHandler(cities CityViewer, renderer *render.Renderer) *CityHandler {
	return &CityHandler{cities: cities, renderer: renderer}
}

// ListCities handles GET /api/cities.
func (h *CityHandler) ListCities(c echo.Context) error {
	return Success(c, http.StatusOK, "cities retrieved", h.cities.Cities(c.Request().Context()))
}

// View handles GET /api/city/:city. An unavailable bundle still answers 200
// with unavailable set and empty sequences.
func (h *CityHandler) View(c echo.Context) error {
	city := pathParam(c, "city")
	if city == "" {
		return Error(c, http.StatusBadRequest, "city is required")
	}

	view := h.cities.View(c.Request().Context(), city, strings.TrimSpace(c.QueryParam("state")))
	message := "city data retrieved"
	if view.Unavailable {
		message = "city data unavailable"
	}
	return Success(c, http.StatusOK, message, view)
}

// Page handles GET /dumpsters/:city and /dumpsters/:city/:state.
func (h *CityHandler) Page(c echo.Context) error {
	city := pathParam(c, "city")
	if city == "" {
		return Error(c, http.StatusBadRequest, "city is required")
	}
	state := pathParam(c, "state")
	if state == "" {
		state = strings.TrimSpace(c.QueryParam("state"))
	}

	view := h.cities.View(c.Request().Context(), city, state)
	data, err := h.renderer.PageData(view, canonicalURL(c))
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to render city page")
	}

	status := http.StatusOK
	if view.Unavailable {
		status = http.StatusNotFound
	}
	return c.Render(status, render.TemplateCityPage, data)
}

// Table handles GET /fragments/table.
func (h *CityHandler) Table(c echo.Context) error {
	opts := h.renderer.Options().Table.WithQuery(c.QueryParams())
	return h.fragment(c, func(buf *bytes.Buffer, view viewmodel.CityView) error {
		return h.renderer.Table(buf, view, opts)
	})
}

// Companies handles GET /fragments/companies.
func (h *CityHandler) Companies(c echo.Context) error {
	opts := h.renderer.Options().Companies.WithQuery(c.QueryParams())
	return h.fragment(c, func(buf *bytes.Buffer, view viewmodel.CityView) error {
		return h.renderer.Companies(buf, view, opts)
	})
}

// Form handles GET /fragments/form.
func (h *CityHandler) Form(c echo.Context) error {
	opts := h.renderer.Options().Form.WithQuery(c.QueryParams())
	return h.fragment(c, func(buf *bytes.Buffer, view viewmodel.CityView) error {
		return h.renderer.Form(buf, view, opts)
	})
}

// fragment resolves the city from the query string, where an empty city means
// the first listed one, and writes the rendered HTML.
func (h *CityHandler) fragment(c echo.Context, write func(*bytes.Buffer, viewmodel.CityView) error) error {
	view := h.cities.View(c.Request().Context(), c.QueryParam("city"), c.QueryParam("state"))

	var buf bytes.Buffer
	if err := write(&buf, view); err != nil {
		return Error(c, http.StatusInternalServerError, "failed to render fragment")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}

func canonicalURL(c echo.Context) string {
	req := c.Request()
	return c.Scheme() + "://" + req.Host + req.URL.Path
}
