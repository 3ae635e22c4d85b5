// Package services ties validation, gathering, composition, and caching into
// the engine's serving surface.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"highland-risk/internal/gather"
	"highland-risk/internal/grid"
	"highland-risk/internal/models"
	"highland-risk/internal/observability"
	"highland-risk/internal/risk"
)

// Invalid requests are rejected synchronously, before any fetch. Upstream
// failures are never errors at this level: they degrade confidence instead.
var (
	ErrOutOfRegion   = errors.New("location outside the operational region")
	ErrInvalidWindow = errors.New("time window start must not be after end")
	ErrUnknownRisk   = errors.New("unknown risk type")
)

// AssessorConfig carries the serving-layer knobs.
type AssessorConfig struct {
	Bounds         models.BoundingBox
	PredictionDays int // precipitation history gathered for a prediction
	GridBatchSize  int
}

type Assessor struct {
	cfg        AssessorConfig
	gatherer   *gather.Gatherer
	flood      *risk.FloodComposer
	drought    *risk.DroughtComposer
	prediction *risk.PredictionComposer
	gridEval   *grid.Evaluator
	cache      *ResultCache
	metrics    *observability.Metrics
	clock      clockwork.Clock
	logger     *zap.Logger
}

func NewAssessor(
	cfg AssessorConfig,
	gatherer *gather.Gatherer,
	flood *risk.FloodComposer,
	drought *risk.DroughtComposer,
	prediction *risk.PredictionComposer,
	cache *ResultCache,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Assessor {
	return &Assessor{
		cfg:        cfg,
		gatherer:   gatherer,
		flood:      flood,
		drought:    drought,
		prediction: prediction,
		gridEval:   grid.NewEvaluator(cfg.GridBatchSize, metrics, logger),
		cache:      cache,
		metrics:    metrics,
		clock:      clock,
		logger:     logger,
	}
}

func (a *Assessor) validate(loc models.Location, window models.TimeWindow) error {
	if !a.cfg.Bounds.Contains(loc) {
		return fmt.Errorf("%w: lat=%.4f lon=%.4f", ErrOutOfRegion, loc.Lat, loc.Lon)
	}
	if !window.Valid() {
		return ErrInvalidWindow
	}
	return nil
}

// FloodRisk assesses current flood risk for the window.
func (a *Assessor) FloodRisk(ctx context.Context, loc models.Location, window models.TimeWindow) (models.CompositeRiskResult, error) {
	return a.assess(ctx, models.RiskFlood, loc, window)
}

// DroughtRisk assesses current drought risk for the window.
func (a *Assessor) DroughtRisk(ctx context.Context, loc models.Location, window models.TimeWindow) (models.CompositeRiskResult, error) {
	return a.assess(ctx, models.RiskDrought, loc, window)
}

// PredictFlood produces the short-horizon flood outlook. The window is
// derived from the clock: the configured number of trailing days ending today.
func (a *Assessor) PredictFlood(ctx context.Context, loc models.Location) (models.CompositeRiskResult, error) {
	today := a.clock.Now().UTC().Truncate(24 * time.Hour)
	window := models.TimeWindow{
		Start: today.AddDate(0, 0, -(a.cfg.PredictionDays - 1)),
		End:   today,
	}
	return a.assess(ctx, models.RiskPrediction, loc, window)
}

func (a *Assessor) assess(ctx context.Context, riskType models.RiskType, loc models.Location, window models.TimeWindow) (models.CompositeRiskResult, error) {
	if err := a.validate(loc, window); err != nil {
		return models.CompositeRiskResult{}, err
	}

	if cached, ok := a.cache.Get(riskType, loc, window); ok {
		a.metrics.CacheHits.Inc()
		return cached, nil
	}
	a.metrics.CacheMisses.Inc()

	start := a.clock.Now()
	var result models.CompositeRiskResult
	switch riskType {
	case models.RiskFlood:
		bundle := a.gatherer.Gather(ctx, loc, window, gather.FloodSignals())
		result = a.flood.Compose(bundle)
	case models.RiskDrought:
		bundle := a.gatherer.Gather(ctx, loc, window, gather.DroughtSignals())
		result = a.drought.Compose(bundle)
	case models.RiskPrediction:
		bundle := a.gatherer.Gather(ctx, loc, window, gather.FloodSignals())
		result = a.prediction.Compose(bundle)
	default:
		return models.CompositeRiskResult{}, fmt.Errorf("%w: %s", ErrUnknownRisk, riskType)
	}
	result.GeneratedAt = a.clock.Now().UTC()

	a.metrics.Assessments.WithLabelValues(string(riskType)).Inc()
	a.metrics.AssessmentDuration.WithLabelValues(string(riskType)).Observe(a.clock.Since(start).Seconds())
	a.logger.Info("risk assessment computed",
		zap.String("type", string(riskType)),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lon", loc.Lon),
		zap.Float64("score", result.Overall),
		zap.String("severity", result.Severity.Label),
		zap.Float64("confidence", result.Confidence))

	a.cache.Set(result, window)
	return result, nil
}

// EvaluateGrid runs the selected risk type over a lattice inside bounds.
// The grid's bounds must lie inside the operational region.
func (a *Assessor) EvaluateGrid(ctx context.Context, bounds models.BoundingBox, size int, riskType models.RiskType, window models.TimeWindow) (models.GridRiskMap, error) {
	corners := []models.Location{
		{Lat: bounds.MinLat, Lon: bounds.MinLon},
		{Lat: bounds.MaxLat, Lon: bounds.MaxLon},
	}
	for _, corner := range corners {
		if err := a.validate(corner, window); err != nil {
			return models.GridRiskMap{}, err
		}
	}

	switch riskType {
	case models.RiskFlood, models.RiskDrought, models.RiskPrediction:
	default:
		return models.GridRiskMap{}, fmt.Errorf("%w: %s", ErrUnknownRisk, riskType)
	}

	points := a.gridEval.Evaluate(ctx, bounds, size, func(ctx context.Context, loc models.Location) (float64, error) {
		result, err := a.assess(ctx, riskType, loc, window)
		if err != nil {
			return 0, err
		}
		return result.Overall, nil
	})

	return models.GridRiskMap{
		Type:        riskType,
		Bounds:      bounds,
		Size:        size,
		Points:      points,
		GeneratedAt: a.clock.Now().UTC(),
	}, nil
}
