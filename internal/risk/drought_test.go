package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highland-risk/internal/models"
)

func droughtSeries(daily float64, days int) models.SeriesSignal {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]models.Sample, days)
	for i := range samples {
		samples[i] = models.Sample{Date: start.AddDate(0, 0, i), Value: daily}
	}
	return models.PresentSeries(samples)
}

func TestDroughtComposer(t *testing.T) {
	composer := NewDroughtComposer(droughtTestThresholds(), testNormals())
	window := models.TimeWindow{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
	}

	t.Run("failed rains scenario is severe or worse", func(t *testing.T) {
		// 80% below the daily normal, +4°C, stressed vegetation.
		result := composer.Compose(models.RawSignalBundle{
			Location:      addisAbaba,
			Window:        window,
			Precipitation: droughtSeries(0.68, 30),
			Temperature:   droughtSeries(21.5, 30),
			Vegetation:    models.IndexSignal{Value: 0.15, Present: true},
		})

		assert.Equal(t, models.RiskDrought, result.Type)
		assert.GreaterOrEqual(t, result.Overall, 0.6)
		assert.Contains(t, []string{"severe", "extreme"}, result.Severity.Label)
		assert.InDelta(t, 1.0, result.Confidence, 1e-9)

		require.Len(t, result.Components, 4)
		assert.NotEmpty(t, result.Recommendations)
	})

	t.Run("wet season conditions score none", func(t *testing.T) {
		result := composer.Compose(models.RawSignalBundle{
			Location:      addisAbaba,
			Window:        window,
			Precipitation: droughtSeries(6, 30),
			Temperature:   droughtSeries(16, 30),
			Vegetation:    models.IndexSignal{Value: 0.5, Present: true},
		})

		assert.Equal(t, "none", result.Severity.Label)
		require.Len(t, result.Recommendations, 1)
		assert.Contains(t, result.Recommendations[0], "currently low")
	})

	t.Run("all absent degrades to neutral with zero confidence", func(t *testing.T) {
		result := composer.Compose(models.RawSignalBundle{Location: addisAbaba, Window: window})

		assert.InDelta(t, 0.0, result.Confidence, 1e-9)
		assert.InDelta(t, 0.5, result.Overall, 1e-9)
	})

	t.Run("missing temperature still uses the remaining signals", func(t *testing.T) {
		result := composer.Compose(models.RawSignalBundle{
			Location:      addisAbaba,
			Window:        window,
			Precipitation: droughtSeries(0.68, 30),
			Vegetation:    models.IndexSignal{Value: 0.15, Present: true},
		})

		assert.InDelta(t, 0.75, result.Confidence, 1e-9) // 1.0 - temperature's 0.25
		assert.Greater(t, result.Overall, 0.5)
	})
}
