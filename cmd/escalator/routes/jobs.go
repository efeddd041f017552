package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/careline/engine/cmd/escalator/container"
	"github.com/careline/engine/cmd/escalator/handlers"
	"github.com/careline/engine/cmd/escalator/middleware"
)

// RegisterJobRoutes registers the cron-invoked job endpoints
func RegisterJobRoutes(e *echo.Echo, serviceContainer *container.Container) {
	h := handlers.NewJobsHandler(serviceContainer)

	jobs := e.Group("/jobs", middleware.RequireCronSecret(serviceContainer.Components.Config.Service.CronSecret))
	{
		jobs.POST("/nudge", h.RunNudge)           // every ~15 minutes
		jobs.POST("/half-cycle", h.RunHalfCycle)  // every ~15 minutes
		jobs.POST("/full-cycle", h.RunFullCycle)  // every 5 minutes
		jobs.POST("/emergency", h.RunEmergency)   // every ~15 minutes
		jobs.POST("/retention", h.RunRetention)   // daily
	}
}
