package routes

import (
	"movie-roi-pipeline/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, dashboardHandler *handlers.DashboardHandler) {
	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Dashboard routes - KPI stats from the processed artifact
	dashboard := v1.Group("/dashboard")
	{
		dashboard.Get("/stats", dashboardHandler.GetStats)
	}

	// Processed movie rows
	v1.Get("/movies", dashboardHandler.GetMovies)

	// Run history, only when the store is enabled
	if dashboardHandler.HasRunHistory() {
		v1.Get("/runs", dashboardHandler.GetRuns)
	}
}
