package risk

import (
	"highland-risk/internal/models"
	"highland-risk/internal/scoring"
)

const (
	WeightPredictionRecent     = 0.40
	WeightPredictionSeasonal   = 0.30
	WeightPredictionTerrain    = 0.20
	WeightPredictionVegetation = 0.10
)

// Horizon adjustment factors. The trend multiplier reflects whether the
// recent-rainfall signal is building or fading; the decay factors reflect
// the signal's falling relevance at longer horizons.
const (
	trendUpMultiplier   = 1.2
	trendDownMultiplier = 0.8
	decay24h            = 1.0
	decay3Days          = 0.9
	decay7Days          = 0.8
)

type PredictionComposer struct {
	th      scoring.PredictionThresholds
	normals scoring.RegionNormals
}

func NewPredictionComposer(th scoring.PredictionThresholds, normals scoring.RegionNormals) *PredictionComposer {
	return &PredictionComposer{th: th, normals: normals}
}

func (c *PredictionComposer) Weights() map[string]float64 {
	return map[string]float64{
		scoring.ComponentRecentRainfall:  WeightPredictionRecent,
		scoring.ComponentSeasonalPattern: WeightPredictionSeasonal,
		scoring.ComponentTerrain:         WeightPredictionTerrain,
		scoring.ComponentVegetationCover: WeightPredictionVegetation,
	}
}

// Compose produces the short-horizon flood outlook. Absent signals fall back
// to zero here, never neutral: a forecast must not manufacture risk out of
// missing data.
func (c *PredictionComposer) Compose(bundle models.RawSignalBundle) models.CompositeRiskResult {
	recent := scoring.RecentRainfall(bundle.Precipitation, c.th.RecentDays, c.th.Rainfall)
	seasonal := scoring.SeasonalPattern(bundle.Hazards, bundle.Window.End, c.normals, c.th.Historical, c.th.SeasonBoost)
	terrain := scoring.TerrainRisk(bundle.Terrain, c.th.Terrain)
	vegetation := scoring.VegetationCover(bundle.Vegetation, c.th.Vegetation)

	overall, confidence, components := compose([]weighted{
		{recent, WeightPredictionRecent},
		{seasonal, WeightPredictionSeasonal},
		{terrain, WeightPredictionTerrain},
		{vegetation, WeightPredictionVegetation},
	})

	trend := scoring.TrendStable
	if bundle.Precipitation.Present {
		samples := bundle.Precipitation.Samples
		if len(samples) > c.th.RecentDays {
			samples = samples[len(samples)-c.th.RecentDays:]
		}
		trend = scoring.Trend(models.SeriesSignal{Samples: samples, Present: true}.Values())
	}

	multiplier := 1.0
	switch trend {
	case scoring.TrendIncreasing:
		multiplier = trendUpMultiplier
	case scoring.TrendDecreasing:
		multiplier = trendDownMultiplier
	}

	horizons := &models.HorizonScores{
		Next24h:   scoring.Clamp01(overall * multiplier * decay24h),
		Next3Days: scoring.Clamp01(overall * multiplier * decay3Days),
		Next7Days: scoring.Clamp01(overall * multiplier * decay7Days),
		Trend:     trend,
	}

	severity := FloodScale.Classify(overall)

	return models.CompositeRiskResult{
		Type:            models.RiskPrediction,
		Location:        bundle.Location,
		Overall:         overall,
		Severity:        severity,
		Confidence:      confidence,
		Components:      components,
		Horizons:        horizons,
		Recommendations: predictionRecommendations(severity, horizons),
	}
}
