package handlers

import (
	"errors"
	"strconv"

	"movie-roi-pipeline/internal/repository"
	"movie-roi-pipeline/internal/services"
	"movie-roi-pipeline/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	service *services.DashboardService
	runs    repository.RunLogRepository
	logger  *logrus.Logger
}

// NewDashboardHandler creates the dashboard API handler. runs may be nil when
// the run-history store is disabled; the runs route is then not registered.
func NewDashboardHandler(service *services.DashboardService, runs repository.RunLogRepository, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		runs:    runs,
		logger:  logger,
	}
}

// HasRunHistory reports whether the run-history store is available.
func (h *DashboardHandler) HasRunHistory() bool {
	return h.runs != nil
}

// GetStats returns the dashboard KPIs computed from the processed artifact.
// An absent artifact is the "no data yet" state, not an error.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			return utils.SuccessResponse(c, fiber.StatusOK, "No processed data yet, run the pipeline first", nil)
		}
		h.logger.WithError(err).Error("Failed to compute dashboard stats")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute dashboard stats")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetMovies returns the processed rows, optionally sorted by roi or revenue
// (descending) via the sort query parameter.
func (h *DashboardHandler) GetMovies(c *fiber.Ctx) error {
	sortBy := c.Query("sort", "")

	movies, err := h.service.Movies(c.Context(), sortBy)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			return utils.SuccessResponse(c, fiber.StatusOK, "No processed data yet, run the pipeline first", []any{})
		}
		h.logger.WithError(err).Error("Failed to load processed movies")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load processed movies")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Movies retrieved successfully", movies)
}

// GetRuns returns the most recent pipeline stage runs.
func (h *DashboardHandler) GetRuns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	runs, err := h.runs.Latest(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load run history")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load run history")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Run history retrieved successfully", runs)
}
