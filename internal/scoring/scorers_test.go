package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highland-risk/internal/models"
)

func daySeries(start time.Time, values ...float64) models.SeriesSignal {
	samples := make([]models.Sample, len(values))
	for i, v := range values {
		samples[i] = models.Sample{Date: start.AddDate(0, 0, i), Value: v}
	}
	return models.PresentSeries(samples)
}

func repeatedSeries(start time.Time, value float64, days int) models.SeriesSignal {
	values := make([]float64, days)
	for i := range values {
		values[i] = value
	}
	return daySeries(start, values...)
}

var testStart = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected string
	}{
		{"increasing", []float64{1, 1, 1, 5, 5, 5}, TrendIncreasing},
		{"decreasing", []float64{5, 5, 5, 1, 1, 1}, TrendDecreasing},
		{"flat", []float64{3, 3, 3, 3}, TrendStable},
		{"within noise band", []float64{10, 10, 10.2, 10.3}, TrendStable},
		{"first half all zero", []float64{0, 0, 2, 3}, TrendIncreasing},
		{"all zero", []float64{0, 0, 0, 0}, TrendStable},
		{"single sample", []float64{7}, TrendStable},
		{"empty", nil, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Trend(tt.values))
		})
	}
}

func TestRainfallIntensity(t *testing.T) {
	th := defaultRainfall(0.5)

	t.Run("buckets by daily average", func(t *testing.T) {
		tests := []struct {
			name     string
			daily    float64
			expected float64
		}{
			{"light", 2, 0.10},
			{"mild", 7, 0.30},
			{"moderate", 15, 0.50},
			{"high", 25, 0.70},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Two days keeps the cumulative total under the bonus thresholds.
				score := RainfallIntensity(daySeries(testStart, tt.daily, tt.daily), th)
				assert.InDelta(t, tt.expected, score.Score, 1e-9)
				assert.False(t, score.Absent)
			})
		}
	})

	t.Run("extreme week with cumulative bonus clamps at 1", func(t *testing.T) {
		score := RainfallIntensity(repeatedSeries(testStart, 30, 7), th)
		assert.Equal(t, 1.0, score.Score)
		assert.InDelta(t, 210.0, score.Details["total_mm"], 1e-9)
		assert.InDelta(t, 30.0, score.Details["daily_avg_mm"], 1e-9)
	})

	t.Run("mid bonus", func(t *testing.T) {
		score := RainfallIntensity(repeatedSeries(testStart, 15, 7), th)
		// 0.50 intensity + 0.1 bonus for a 105mm total
		assert.InDelta(t, 0.60, score.Score, 1e-9)
	})

	t.Run("absent falls back to neutral", func(t *testing.T) {
		score := RainfallIntensity(models.AbsentSeries(), th)
		assert.True(t, score.Absent)
		assert.Equal(t, 0.5, score.Score)
	})
}

func TestRecentRainfall(t *testing.T) {
	th := defaultRainfall(0)

	t.Run("scores only the trailing days", func(t *testing.T) {
		// 7 dry days followed by 7 wet days; a 14-day average would dilute.
		sig := daySeries(testStart, 0, 0, 0, 0, 0, 0, 0, 35, 35, 35, 35, 35, 35, 35)
		score := RecentRainfall(sig, 7, th)
		assert.Equal(t, 1.0, score.Score)
		assert.InDelta(t, 7.0, score.Details["days"], 1e-9)
	})

	t.Run("absent falls back to zero", func(t *testing.T) {
		score := RecentRainfall(models.AbsentSeries(), 7, th)
		assert.True(t, score.Absent)
		assert.Equal(t, 0.0, score.Score)
	})
}

func TestPrecipitationDeficit(t *testing.T) {
	normals := DefaultNormals()
	th := DefaultDroughtThresholds().Deficit

	t.Run("extreme deficit", func(t *testing.T) {
		// 20% of the 3.4mm/day normal over 30 days → -80% anomaly.
		score := PrecipitationDeficit(repeatedSeries(testStart, 0.68, 30), normals, th)
		assert.InDelta(t, 0.95, score.Score, 1e-9)
		assert.InDelta(t, -80, score.Details["anomaly_pct"], 0.01)
	})

	t.Run("above normal scores zero", func(t *testing.T) {
		score := PrecipitationDeficit(repeatedSeries(testStart, 10, 30), normals, th)
		assert.Equal(t, 0.0, score.Score)
	})

	t.Run("zero normal guards division", func(t *testing.T) {
		dry := RegionNormals{DailyPrecipMM: 0, MeanTempC: 17.5, NDVI: 0.45}
		score := PrecipitationDeficit(repeatedSeries(testStart, 0, 10), dry, th)
		require.False(t, score.Absent)
		assert.InDelta(t, 0.0, score.Details["anomaly_pct"], 1e-9)
	})
}

func TestTemperatureAnomaly(t *testing.T) {
	normals := DefaultNormals()
	th := DefaultDroughtThresholds().Temperature

	t.Run("four degrees above normal", func(t *testing.T) {
		score := TemperatureAnomaly(repeatedSeries(testStart, 21.5, 30), normals, th)
		assert.InDelta(t, 0.90, score.Score, 1e-9)
		assert.InDelta(t, 4.0, score.Details["anomaly_c"], 1e-9)
	})

	t.Run("below normal scores zero", func(t *testing.T) {
		score := TemperatureAnomaly(repeatedSeries(testStart, 15, 30), normals, th)
		assert.Equal(t, 0.0, score.Score)
	})
}

func TestTerrainRisk(t *testing.T) {
	th := defaultTerrain(0.5)

	t.Run("low flat terrain is high risk", func(t *testing.T) {
		score := TerrainRisk(models.TerrainSignal{ElevationM: 1100, SlopeDeg: 1, Present: true}, th)
		assert.Greater(t, score.Score, 0.7)
		assert.Equal(t, 1100.0, score.Details["elevation_m"])
	})

	t.Run("high plateau with moderate slope is low risk", func(t *testing.T) {
		score := TerrainRisk(models.TerrainSignal{ElevationM: 2800, SlopeDeg: 10, Present: true}, th)
		assert.Less(t, score.Score, 0.3)
	})

	t.Run("slope risk is u-shaped", func(t *testing.T) {
		flat := TerrainRisk(models.TerrainSignal{ElevationM: 2000, SlopeDeg: 1, Present: true}, th)
		mid := TerrainRisk(models.TerrainSignal{ElevationM: 2000, SlopeDeg: 10, Present: true}, th)
		steep := TerrainRisk(models.TerrainSignal{ElevationM: 2000, SlopeDeg: 35, Present: true}, th)
		assert.Greater(t, flat.Score, mid.Score)
		assert.Greater(t, steep.Score, mid.Score)
	})

	t.Run("absent", func(t *testing.T) {
		score := TerrainRisk(models.TerrainSignal{}, th)
		assert.True(t, score.Absent)
		assert.Equal(t, 0.5, score.Score)
	})
}

func TestVegetationScorers(t *testing.T) {
	t.Run("cover buckets", func(t *testing.T) {
		th := defaultVegetation(0.5)
		tests := []struct {
			ndvi     float64
			expected float64
		}{
			{0.15, 0.90},
			{0.30, 0.70},
			{0.50, 0.40},
			{0.75, 0.10},
		}
		for _, tt := range tests {
			score := VegetationCover(models.IndexSignal{Value: tt.ndvi, Present: true}, th)
			assert.InDelta(t, tt.expected, score.Score, 1e-9)
		}
	})

	t.Run("health stress vs regional normal", func(t *testing.T) {
		normals := DefaultNormals()
		th := DefaultDroughtThresholds().VegHealth

		stressed := VegetationHealth(models.IndexSignal{Value: 0.15, Present: true}, normals, th)
		assert.InDelta(t, 0.90, stressed.Score, 1e-9) // -66.7% vs normal

		healthy := VegetationHealth(models.IndexSignal{Value: 0.50, Present: true}, normals, th)
		assert.Equal(t, 0.0, healthy.Score)
	})
}

func TestSoilMoisture(t *testing.T) {
	normals := DefaultNormals()
	th := DefaultDroughtThresholds().SoilMoisture

	t.Run("dry on both inputs", func(t *testing.T) {
		score := SoilMoisture(
			repeatedSeries(testStart, 0.68, 30),
			models.IndexSignal{Value: 0.15, Present: true},
			normals, th)
		require.False(t, score.Absent)
		assert.InDelta(t, 0.60, score.Score, 1e-9)
	})

	t.Run("present with only one input", func(t *testing.T) {
		score := SoilMoisture(models.AbsentSeries(), models.IndexSignal{Value: 0.45, Present: true}, normals, th)
		assert.False(t, score.Absent)
		assert.InDelta(t, 1.0, score.Details["moisture_index"], 1e-9)
	})

	t.Run("absent when both inputs are", func(t *testing.T) {
		score := SoilMoisture(models.AbsentSeries(), models.IndexSignal{}, normals, th)
		assert.True(t, score.Absent)
		assert.Equal(t, 0.5, score.Score)
	})
}

func TestHistoricalFrequency(t *testing.T) {
	th := defaultHistorical(0.5)
	asOf := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	events := func(dates ...time.Time) models.EventsSignal {
		out := make([]models.HazardEvent, len(dates))
		for i, d := range dates {
			out[i] = models.HazardEvent{Date: d, Magnitude: 1}
		}
		return models.EventsSignal{Events: out, Present: true}
	}

	t.Run("three events in five years", func(t *testing.T) {
		score := HistoricalFrequency(events(
			asOf.AddDate(-4, 0, 0),
			asOf.AddDate(-2, 0, 0),
			asOf.AddDate(-1, 0, 0),
		), asOf, th)
		assert.InDelta(t, 0.60, score.Score, 1e-9)
		assert.InDelta(t, 0.6, score.Details["events_per_year"], 1e-9)
	})

	t.Run("recency boost under 30 days", func(t *testing.T) {
		score := HistoricalFrequency(events(
			asOf.AddDate(-4, 0, 0),
			asOf.AddDate(-2, 0, 0),
			asOf.AddDate(0, 0, -10),
		), asOf, th)
		assert.InDelta(t, 0.80, score.Score, 1e-9)
	})

	t.Run("recency boost under 90 days", func(t *testing.T) {
		score := HistoricalFrequency(events(
			asOf.AddDate(-4, 0, 0),
			asOf.AddDate(-2, 0, 0),
			asOf.AddDate(0, 0, -60),
		), asOf, th)
		assert.InDelta(t, 0.70, score.Score, 1e-9)
	})

	t.Run("present but empty scores zero", func(t *testing.T) {
		score := HistoricalFrequency(models.EventsSignal{Events: nil, Present: true}, asOf, th)
		assert.False(t, score.Absent)
		assert.Equal(t, 0.0, score.Score)
	})

	t.Run("absent", func(t *testing.T) {
		score := HistoricalFrequency(models.EventsSignal{}, asOf, th)
		assert.True(t, score.Absent)
	})
}

func TestSeasonalPattern(t *testing.T) {
	normals := DefaultNormals()
	th := defaultHistorical(0)

	sig := models.EventsSignal{
		Events: []models.HazardEvent{
			{Date: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)},
		},
		Present: true,
	}

	wet := SeasonalPattern(sig, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), normals, th, 0.15)
	dry := SeasonalPattern(sig, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), normals, th, 0.15)
	assert.InDelta(t, 0.15, wet.Score-dry.Score, 1e-9)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.4, Clamp01(0.4))
}
