package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"highland-risk/internal/models"
	"highland-risk/internal/services"
)

const dateLayout = "2006-01-02"

type Handler struct {
	assessor *services.Assessor
	bounds   models.BoundingBox
	logger   *zap.Logger
}

func NewHandler(assessor *services.Assessor, bounds models.BoundingBox, logger *zap.Logger) *Handler {
	return &Handler{
		assessor: assessor,
		bounds:   bounds,
		logger:   logger,
	}
}

func parseLocation(c *fiber.Ctx) (models.Location, error) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		return models.Location{}, errors.New("lat and lon query parameters are required")
	}
	return models.Location{Lat: lat, Lon: lon}, nil
}

// parseWindow reads start/end dates, defaulting to the trailing 30 days.
func parseWindow(c *fiber.Ctx) (models.TimeWindow, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	window := models.TimeWindow{Start: now.AddDate(0, 0, -30), End: now}

	if s := c.Query("start"); s != "" {
		start, err := time.Parse(dateLayout, s)
		if err != nil {
			return models.TimeWindow{}, errors.New("start must be formatted YYYY-MM-DD")
		}
		window.Start = start
	}
	if e := c.Query("end"); e != "" {
		end, err := time.Parse(dateLayout, e)
		if err != nil {
			return models.TimeWindow{}, errors.New("end must be formatted YYYY-MM-DD")
		}
		window.End = end
	}
	return window, nil
}

func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrOutOfRegion) || errors.Is(err, services.ErrInvalidWindow) || errors.Is(err, services.ErrUnknownRisk) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	h.logger.Error("assessment failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "risk assessment failed"})
}

// GetFloodRisk handles GET /api/v1/risk/flood
func (h *Handler) GetFloodRisk(c *fiber.Ctx) error {
	loc, err := parseLocation(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	window, err := parseWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.assessor.FloodRisk(c.Context(), loc, window)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// GetDroughtRisk handles GET /api/v1/risk/drought
func (h *Handler) GetDroughtRisk(c *fiber.Ctx) error {
	loc, err := parseLocation(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	window, err := parseWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.assessor.DroughtRisk(c.Context(), loc, window)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// GetFloodPrediction handles GET /api/v1/risk/prediction
func (h *Handler) GetFloodPrediction(c *fiber.Ctx) error {
	loc, err := parseLocation(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.assessor.PredictFlood(c.Context(), loc)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// GetRiskGrid handles GET /api/v1/risk/grid
func (h *Handler) GetRiskGrid(c *fiber.Ctx) error {
	minLat, err1 := strconv.ParseFloat(c.Query("min_lat"), 64)
	minLon, err2 := strconv.ParseFloat(c.Query("min_lon"), 64)
	maxLat, err3 := strconv.ParseFloat(c.Query("max_lat"), 64)
	maxLon, err4 := strconv.ParseFloat(c.Query("max_lon"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "min_lat, min_lon, max_lat and max_lon query parameters are required",
		})
	}

	size, err := strconv.Atoi(c.Query("size", "10"))
	if err != nil || size < 1 || size > 50 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "size must be between 1 and 50"})
	}

	riskType := models.RiskType(c.Query("type", string(models.RiskFlood)))
	window, err := parseWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bounds := models.BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	h.logger.Info("evaluating risk grid",
		zap.String("type", string(riskType)),
		zap.Int("size", size))

	gridMap, err := h.assessor.EvaluateGrid(c.Context(), bounds, size, riskType, window)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(gridMap)
}

// GetRegion handles GET /api/v1/region
func (h *Handler) GetRegion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"bounds": h.bounds,
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(startTime).String(),
	})
}

var startTime = time.Now()
