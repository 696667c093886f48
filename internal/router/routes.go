package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rolloff-rates/internal/auth"
	"github.com/octobees/rolloff-rates/internal/config"
	"github.com/octobees/rolloff-rates/internal/handler"
	middlewarepkg "github.com/octobees/rolloff-rates/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth    *handler.AuthHandler
	City    *handler.CityHandler
	Catalog *handler.CatalogHandler
	Leads   *handler.LeadHandler
	Admin   *handler.AdminHandler
}

// Register wires all HTTP routes for the service.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("/api")
	api.GET("/cities", handlers.City.ListCities)
	api.GET("/city/:city", handlers.City.View)
	api.GET("/companies", handlers.Catalog.Companies)
	api.GET("/service-areas", handlers.Catalog.ServiceAreas)
	api.GET("/dumpster-sizes", handlers.Catalog.DumpsterSizes)
	api.GET("/prices", handlers.Catalog.Prices)

	e.GET("/dumpsters/:city", handlers.City.Page)
	e.GET("/dumpsters/:city/:state", handlers.City.Page)

	fragments := e.Group("/fragments")
	fragments.GET("/table", handlers.City.Table)
	fragments.GET("/companies", handlers.City.Companies)
	fragments.GET("/form", handlers.City.Form)

	e.POST("/leads", handlers.Leads.Submit, middlewarepkg.RateLimiter(cfg.RateLimitLeads, "lead"))
	e.POST("/auth/login", handlers.Auth.Login)

	admin := e.Group("/admin", middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(auth.RoleAdmin))
	admin.GET("/me", handlers.Admin.Whoami)
	admin.POST("/scrape", handlers.Admin.TriggerScrape, middlewarepkg.RateLimiter(cfg.RateLimitScrape, "scrape"))
	admin.POST("/cache/clear", handlers.Admin.ClearCache)
	admin.POST("/static/generate", handlers.Admin.GenerateStatic)
	admin.GET("/leads", handlers.Admin.ListLeads)
	admin.GET("/leads/:id", handlers.Admin.GetLead)

	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}
}
