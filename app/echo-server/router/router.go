package router

import (
	"nycTaxiExplorer/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupTripRoutes(api *echo.Group, handler *rest.TripHandler) {
	trips := api.Group("/trips")

	trips.GET("", handler.List)
	trips.GET("/date-range", handler.DateRange)
	trips.GET("/hour/:hour", handler.ByHour)
	trips.GET("/:id", handler.GetByID)
}

func SetupZoneRoutes(api *echo.Group, handler *rest.ZoneHandler) {
	zones := api.Group("/zones")

	zones.GET("", handler.GetAll)
	zones.GET("/top-pickups", handler.TopPickups)
	zones.GET("/top-dropoffs", handler.TopDropoffs)
	zones.GET("/boroughs", handler.Boroughs)
	zones.GET("/search", handler.Search)
	zones.GET("/:id", handler.GetByID)
	zones.GET("/:id/trips", handler.Trips)
}

func SetupStatsRoutes(api *echo.Group, handler *rest.StatsHandler) {
	api.GET("/health", handler.Health)

	stats := api.Group("/stats")
	stats.GET("", handler.Stats)
	stats.GET("/hourly", handler.Hourly)
	stats.GET("/borough", handler.Borough)
	stats.GET("/fares", handler.Fares)

	api.GET("/routes/popular", handler.PopularRoutes)
	api.POST("/search/trips", handler.SearchTrips)
}

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler) {
	analytics := api.Group("/analytics")

	analytics.GET("/top-zones", handler.TopZones)
	analytics.GET("/top-routes", handler.TopRoutes)
	analytics.GET("/anomalies", handler.Anomalies)
	analytics.GET("/speed-patterns", handler.SpeedPatterns)
	analytics.GET("/revenue-hourly", handler.RevenueHourly)
	analytics.GET("/borough-comparison", handler.BoroughComparison)
	analytics.GET("/insights", handler.Insights)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.PipelineAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.GET("/pipeline/runs", handler.Runs)
	admin.POST("/cache/flush", handler.FlushCache)
}
