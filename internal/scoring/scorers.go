// Package scoring holds the pure component scorers. Every scorer maps one
// raw signal category plus an injected threshold set to a normalized score in
// [0,1]; none of them touch the network, the clock, or any shared state.
package scoring

import (
	"time"

	"highland-risk/internal/models"
)

const (
	ComponentRainfallIntensity    = "rainfall_intensity"
	ComponentRecentRainfall       = "recent_rainfall"
	ComponentPrecipitationDeficit = "precipitation_deficit"
	ComponentTemperatureAnomaly   = "temperature_anomaly"
	ComponentTerrain              = "terrain"
	ComponentVegetationCover      = "vegetation_cover"
	ComponentVegetationHealth     = "vegetation_health"
	ComponentSoilMoisture         = "soil_moisture"
	ComponentHistoricalFrequency  = "historical_frequency"
	ComponentSeasonalPattern      = "seasonal_pattern"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"

	trendStableBand = 0.05
)

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// safeRatio divides with a zero-denominator guard: an undefined ratio
// contributes nothing rather than propagating NaN.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Trend compares the first-half mean against the second-half mean, with a
// ±5% band for "stable" so sampling noise does not flip the direction.
func Trend(values []float64) string {
	if len(values) < 2 {
		return TrendStable
	}
	half := len(values) / 2
	first := mean(values[:half])
	second := mean(values[half:])
	if first == 0 {
		if second > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	change := (second - first) / first
	switch {
	case change > trendStableBand:
		return TrendIncreasing
	case change < -trendStableBand:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func absent(name string, fallback float64) models.ComponentScore {
	return models.ComponentScore{Name: name, Score: Clamp01(fallback), Absent: true}
}

// RainfallIntensity buckets the daily average and adds a cumulative-total
// bonus for sustained rain on top of the intensity bucket.
func RainfallIntensity(sig models.SeriesSignal, th RainfallThresholds) models.ComponentScore {
	return rainfallScore(ComponentRainfallIntensity, sig.Samples, sig.Present, th)
}

// RecentRainfall scores only the trailing days of the series, for the
// short-horizon prediction composer.
func RecentRainfall(sig models.SeriesSignal, days int, th RainfallThresholds) models.ComponentScore {
	samples := sig.Samples
	if len(samples) > days {
		samples = samples[len(samples)-days:]
	}
	return rainfallScore(ComponentRecentRainfall, samples, sig.Present, th)
}

func rainfallScore(name string, samples []models.Sample, present bool, th RainfallThresholds) models.ComponentScore {
	if !present || len(samples) == 0 {
		return absent(name, th.AbsentScore)
	}

	total := 0.0
	for _, s := range samples {
		total += s.Value
	}
	dailyAvg := total / float64(len(samples))

	score := ladder(dailyAvg, th.DailyBands, th.DailyTop)
	switch {
	case total >= th.BonusHiMM:
		score += 0.2
	case total >= th.BonusMidMM:
		score += 0.1
	}

	return models.ComponentScore{
		Name:  name,
		Score: Clamp01(score),
		Details: map[string]float64{
			"total_mm":     total,
			"daily_avg_mm": dailyAvg,
			"days":         float64(len(samples)),
		},
	}
}

// PrecipitationDeficit scores the percent anomaly of observed rainfall
// against the regional daily normal over the window.
func PrecipitationDeficit(sig models.SeriesSignal, normals RegionNormals, th DeficitThresholds) models.ComponentScore {
	if !sig.Present || len(sig.Samples) == 0 {
		return absent(ComponentPrecipitationDeficit, th.AbsentScore)
	}

	total := 0.0
	for _, s := range sig.Samples {
		total += s.Value
	}
	expected := normals.DailyPrecipMM * float64(len(sig.Samples))
	anomalyPct := safeRatio(total-expected, expected) * 100

	return models.ComponentScore{
		Name:  ComponentPrecipitationDeficit,
		Score: Clamp01(ladder(anomalyPct, th.AnomalyBands, th.Top)),
		Details: map[string]float64{
			"total_mm":    total,
			"expected_mm": expected,
			"anomaly_pct": anomalyPct,
		},
	}
}

// TemperatureAnomaly scores the window's mean temperature against the
// regional normal; warmer than normal scores higher.
func TemperatureAnomaly(sig models.SeriesSignal, normals RegionNormals, th TemperatureThresholds) models.ComponentScore {
	if !sig.Present || len(sig.Samples) == 0 {
		return absent(ComponentTemperatureAnomaly, th.AbsentScore)
	}

	avg := mean(sig.Values())
	diff := avg - normals.MeanTempC

	return models.ComponentScore{
		Name:  ComponentTemperatureAnomaly,
		Score: Clamp01(ladder(diff, th.DiffBands, th.Top)),
		Details: map[string]float64{
			"mean_c":    avg,
			"normal_c":  normals.MeanTempC,
			"anomaly_c": diff,
		},
	}
}

// TerrainRisk blends elevation risk (lower → higher), a U-shaped slope term
// (ponding on flats, runoff convergence on steep ground), and a simplified
// topographic wetness proxy.
func TerrainRisk(sig models.TerrainSignal, th TerrainThresholds) models.ComponentScore {
	if !sig.Present {
		return absent(ComponentTerrain, th.AbsentScore)
	}

	elevScore := ladder(sig.ElevationM, th.ElevationBands, th.ElevationTop)
	slopeScore := ladder(sig.SlopeDeg, th.SlopeBands, th.SlopeTop)
	wetness := Clamp01(1 - sig.SlopeDeg/45 - sig.ElevationM/4000)

	score := th.ElevationWeight*elevScore + th.SlopeWeight*slopeScore + th.WetnessWeight*wetness

	return models.ComponentScore{
		Name:  ComponentTerrain,
		Score: Clamp01(score),
		Details: map[string]float64{
			"elevation_m": sig.ElevationM,
			"slope_deg":   sig.SlopeDeg,
			"wetness":     wetness,
		},
	}
}

// VegetationCover scores flood exposure from NDVI: bare ground sheds water
// fastest.
func VegetationCover(sig models.IndexSignal, th VegetationThresholds) models.ComponentScore {
	if !sig.Present {
		return absent(ComponentVegetationCover, th.AbsentScore)
	}

	return models.ComponentScore{
		Name:  ComponentVegetationCover,
		Score: Clamp01(ladder(sig.Value, th.NDVIBands, th.Top)),
		Details: map[string]float64{
			"ndvi": sig.Value,
		},
	}
}

// VegetationHealth scores drought stress from NDVI deviation below the
// regional normal.
func VegetationHealth(sig models.IndexSignal, normals RegionNormals, th VegHealthThresholds) models.ComponentScore {
	if !sig.Present {
		return absent(ComponentVegetationHealth, th.AbsentScore)
	}

	deficitPct := safeRatio(sig.Value-normals.NDVI, normals.NDVI) * 100

	return models.ComponentScore{
		Name:  ComponentVegetationHealth,
		Score: Clamp01(ladder(deficitPct, th.DeficitBands, th.Top)),
		Details: map[string]float64{
			"ndvi":        sig.Value,
			"normal_ndvi": normals.NDVI,
			"deficit_pct": deficitPct,
		},
	}
}

// SoilMoisture derives an NDWI-like moisture index from recent rainfall and
// vegetation, then buckets it (drier → higher score). Present when at least
// one of the two inputs is.
func SoilMoisture(precip models.SeriesSignal, veg models.IndexSignal, normals RegionNormals, th SoilMoistureThresholds) models.ComponentScore {
	if !precip.Present && !veg.Present {
		return absent(ComponentSoilMoisture, th.AbsentScore)
	}

	var parts []float64
	if precip.Present && len(precip.Samples) > 0 {
		total := 0.0
		for _, s := range precip.Samples {
			total += s.Value
		}
		expected := normals.DailyPrecipMM * float64(len(precip.Samples))
		parts = append(parts, Clamp01(safeRatio(total, expected)))
	}
	if veg.Present {
		parts = append(parts, Clamp01(safeRatio(veg.Value, normals.NDVI)))
	}
	index := Clamp01(mean(parts))

	return models.ComponentScore{
		Name:  ComponentSoilMoisture,
		Score: Clamp01(ladder(index, th.IndexBands, th.Top)),
		Details: map[string]float64{
			"moisture_index": index,
		},
	}
}

// HistoricalFrequency scores events-per-year over the lookback, with a
// recency boost when the last event is fresh enough that the ground is still
// saturated. Recency is measured against asOf, not the wall clock, so the
// scorer stays deterministic.
func HistoricalFrequency(sig models.EventsSignal, asOf time.Time, th HistoricalThresholds) models.ComponentScore {
	return historicalScore(ComponentHistoricalFrequency, sig, asOf, th, 0)
}

// SeasonalPattern is the prediction composer's variant: the frequency score
// plus a wet-season boost when asOf falls inside the configured rainy months.
func SeasonalPattern(sig models.EventsSignal, asOf time.Time, normals RegionNormals, th HistoricalThresholds, boost float64) models.ComponentScore {
	seasonal := 0.0
	if normals.InWetSeason(asOf.Month()) {
		seasonal = boost
	}
	score := historicalScore(ComponentSeasonalPattern, sig, asOf, th, seasonal)
	return score
}

func historicalScore(name string, sig models.EventsSignal, asOf time.Time, th HistoricalThresholds, extra float64) models.ComponentScore {
	if !sig.Present {
		return absent(name, th.AbsentScore)
	}

	perYear := safeRatio(float64(len(sig.Events)), th.LookbackYears)
	score := ladder(perYear, th.PerYearBands, th.Top)

	var lastEvent time.Time
	for _, e := range sig.Events {
		if e.Date.After(lastEvent) {
			lastEvent = e.Date
		}
	}

	daysSince := -1.0
	if !lastEvent.IsZero() && !lastEvent.After(asOf) {
		daysSince = asOf.Sub(lastEvent).Hours() / 24
		switch {
		case daysSince < float64(th.RecentDays):
			score += th.RecentBoost
		case daysSince < float64(th.NearDays):
			score += th.NearBoost
		}
	}

	return models.ComponentScore{
		Name:  name,
		Score: Clamp01(score + extra),
		Details: map[string]float64{
			"events":          float64(len(sig.Events)),
			"events_per_year": perYear,
			"days_since_last": daysSince,
		},
	}
}
