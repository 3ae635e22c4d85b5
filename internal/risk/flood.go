// Package risk composes component scores into composite risk results. Each
// composer is deterministic: the same bundle always produces the same result.
package risk

import (
	"highland-risk/internal/models"
	"highland-risk/internal/scoring"
)

// Flood weight vector. Must sum to exactly 1.0; confidence weighting depends
// on it.
const (
	WeightFloodRainfall   = 0.35
	WeightFloodTerrain    = 0.30
	WeightFloodVegetation = 0.15
	WeightFloodHistory    = 0.20
)

type FloodComposer struct {
	th scoring.FloodThresholds
}

func NewFloodComposer(th scoring.FloodThresholds) *FloodComposer {
	return &FloodComposer{th: th}
}

func (c *FloodComposer) Weights() map[string]float64 {
	return map[string]float64{
		scoring.ComponentRainfallIntensity:   WeightFloodRainfall,
		scoring.ComponentTerrain:             WeightFloodTerrain,
		scoring.ComponentVegetationCover:     WeightFloodVegetation,
		scoring.ComponentHistoricalFrequency: WeightFloodHistory,
	}
}

// Compose scores flood risk from whatever the bundle carries. Absent signals
// fall back to the configured neutral score and discount confidence; the
// composer never fails on missing data.
func (c *FloodComposer) Compose(bundle models.RawSignalBundle) models.CompositeRiskResult {
	rainfall := scoring.RainfallIntensity(bundle.Precipitation, c.th.Rainfall)
	terrain := scoring.TerrainRisk(bundle.Terrain, c.th.Terrain)
	vegetation := scoring.VegetationCover(bundle.Vegetation, c.th.Vegetation)
	history := scoring.HistoricalFrequency(bundle.Hazards, bundle.Window.End, c.th.Historical)

	overall, confidence, components := compose([]weighted{
		{rainfall, WeightFloodRainfall},
		{terrain, WeightFloodTerrain},
		{vegetation, WeightFloodVegetation},
		{history, WeightFloodHistory},
	})

	severity := FloodScale.Classify(overall)

	return models.CompositeRiskResult{
		Type:            models.RiskFlood,
		Location:        bundle.Location,
		Overall:         overall,
		Severity:        severity,
		Confidence:      confidence,
		Components:      components,
		Recommendations: floodRecommendations(severity, components),
	}
}
