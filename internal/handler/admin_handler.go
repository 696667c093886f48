package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/dto"
	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/middleware"
	"github.com/octobees/rolloff-rates/internal/service"
	"github.com/octobees/rolloff-rates/internal/staticgen"
)

// AdminOperations are the operator actions on the cache and static mirror.
type AdminOperations interface {
	TriggerScrape(ctx context.Context) (dto.ScrapeResult, error)
	ClearCache(ctx context.Context) (dto.CacheClearResult, error)
	GenerateStatic(ctx context.Context) (dto.StaticResult, error)
}

// LeadReader reads stored leads.
type LeadReader interface {
	List(ctx context.Context, filter dto.LeadListFilter) ([]entity.Lead, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
}

// AdminHandler exposes the operator endpoints.
type AdminHandler struct {
	ops   AdminOperations
	leads LeadReader
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(ops AdminOperations, leads LeadReader) *AdminHandler {
	return &AdminHandler{ops: ops, leads: leads}
}

// TriggerScrape handles POST /admin/scrape.
func (h *AdminHandler) TriggerScrape(c echo.Context) error {
	result, err := h.ops.TriggerScrape(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusBadGateway, err.Error())
	}
	return Success(c, http.StatusOK, result.Message, result)
}

// ClearCache handles POST /admin/cache/clear.
func (h *AdminHandler) ClearCache(c echo.Context) error {
	result, err := h.ops.ClearCache(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to clear cache")
	}
	return Success(c, http.StatusOK, "Cache cleared successfully.", result)
}

// GenerateStatic handles POST /admin/static/generate.
func (h *AdminHandler) GenerateStatic(c echo.Context) error {
	result, err := h.ops.GenerateStatic(c.Request().Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStaticDisabled):
			return Error(c, http.StatusServiceUnavailable, "static generation is disabled")
		case errors.Is(err, staticgen.ErrGenerationInProgress):
			return Error(c, http.StatusConflict, "static generation already in progress")
		case errors.Is(err, staticgen.ErrNoCities):
			return Error(c, http.StatusBadGateway, "no cities available from the rates api")
		default:
			return Error(c, http.StatusInternalServerError, "failed to generate static pages")
		}
	}
	return Success(c, http.StatusOK, "static pages generated", result)
}

// ListLeads handles GET /admin/leads.
func (h *AdminHandler) ListLeads(c echo.Context) error {
	filter := dto.LeadListFilter{
		Q:       strings.TrimSpace(c.QueryParam("q")),
		City:    strings.TrimSpace(c.QueryParam("city")),
		State:   strings.TrimSpace(c.QueryParam("state")),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if sinceStr := strings.TrimSpace(c.QueryParam("since")); sinceStr != "" {
		since, err := parseSince(sinceStr)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid since (use RFC3339 or YYYY-MM-DD)")
		}
		filter.Since = &since
	}

	leads, err := h.leads.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", leads)
}

// GetLead handles GET /admin/leads/:id.
func (h *AdminHandler) GetLead(c echo.Context) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	lead, err := h.leads.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Whoami handles GET /admin/me.
func (h *AdminHandler) Whoami(c echo.Context) error {
	return Success(c, http.StatusOK, "authenticated", map[string]string{
		"email": middleware.UserEmailFromContext(c),
	})
}

func parseSince(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
