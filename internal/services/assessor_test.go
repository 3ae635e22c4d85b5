package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"highland-risk/internal/gather"
	"highland-risk/internal/models"
	"highland-risk/internal/observability"
	"highland-risk/internal/risk"
	"highland-risk/internal/scoring"
)

type fakePrecip struct {
	calls     int32
	failing   bool
	gotWindow atomic.Value
}

func (f *fakePrecip) FetchPrecipitation(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error) {
	atomic.AddInt32(&f.calls, 1)
	f.gotWindow.Store(window)
	if f.failing {
		return nil, errors.New("archive unavailable")
	}
	samples := make([]models.Sample, 7)
	for i := range samples {
		samples[i] = models.Sample{Date: window.Start.AddDate(0, 0, i), Value: 12}
	}
	return samples, nil
}

type fakeTerrain struct{}

func (fakeTerrain) FetchPoint(ctx context.Context, loc models.Location) (float64, float64, error) {
	return 1900, 6, nil
}

type fakeVegetation struct{}

func (fakeVegetation) FetchIndex(ctx context.Context, loc models.Location) (float64, error) {
	return 0.35, nil
}

type fakeHazards struct{}

func (fakeHazards) FetchEvents(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.HazardEvent, error) {
	return []models.HazardEvent{{Date: window.End.AddDate(-1, 0, 0), Magnitude: 2}}, nil
}

type fakeTemp struct{}

func (fakeTemp) FetchTemperature(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error) {
	return []models.Sample{{Date: window.Start, Value: 18}}, nil
}

var regionBounds = models.BoundingBox{MinLat: 3.4, MinLon: 33.0, MaxLat: 14.9, MaxLon: 48.0}

func newTestAssessor(t *testing.T, precip *fakePrecip, clock clockwork.Clock) *Assessor {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	sources := gather.Sources{
		Precipitation: precip,
		Temperature:   fakeTemp{},
		Terrain:       fakeTerrain{},
		Vegetation:    fakeVegetation{},
		Hazards:       fakeHazards{},
	}
	normals := scoring.DefaultNormals()
	cache := NewResultCache(10*time.Minute, 100, clock, logger)
	t.Cleanup(cache.Stop)

	return NewAssessor(
		AssessorConfig{Bounds: regionBounds, PredictionDays: 14, GridBatchSize: 5},
		gather.New(sources, 5, metrics, logger),
		risk.NewFloodComposer(scoring.DefaultFloodThresholds()),
		risk.NewDroughtComposer(scoring.DefaultDroughtThresholds(), normals),
		risk.NewPredictionComposer(scoring.DefaultPredictionThresholds(), normals),
		cache,
		metrics,
		clock,
		logger,
	)
}

var (
	inRegion  = models.Location{Lat: 9.03, Lon: 38.74}
	offRegion = models.Location{Lat: 48.85, Lon: 2.35}
	assessWin = models.TimeWindow{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC),
	}
)

func TestAssessorValidation(t *testing.T) {
	a := newTestAssessor(t, &fakePrecip{}, clockwork.NewFakeClock())

	t.Run("location outside region is rejected before any fetch", func(t *testing.T) {
		precip := &fakePrecip{}
		a := newTestAssessor(t, precip, clockwork.NewFakeClock())

		_, err := a.FloodRisk(context.Background(), offRegion, assessWin)
		require.ErrorIs(t, err, ErrOutOfRegion)
		assert.Zero(t, atomic.LoadInt32(&precip.calls))
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		_, err := a.FloodRisk(context.Background(), inRegion, models.TimeWindow{
			Start: assessWin.End,
			End:   assessWin.Start,
		})
		require.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestAssessorFloodRisk(t *testing.T) {
	t.Run("computes, stamps, and caches", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC))
		precip := &fakePrecip{}
		a := newTestAssessor(t, precip, clock)

		first, err := a.FloodRisk(context.Background(), inRegion, assessWin)
		require.NoError(t, err)
		assert.Equal(t, models.RiskFlood, first.Type)
		assert.Equal(t, clock.Now().UTC(), first.GeneratedAt)
		assert.InDelta(t, 1.0, first.Confidence, 1e-9)
		assert.GreaterOrEqual(t, first.Overall, 0.0)
		assert.LessOrEqual(t, first.Overall, 1.0)

		second, err := a.FloodRisk(context.Background(), inRegion, assessWin)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), atomic.LoadInt32(&precip.calls), "second call must hit the cache")
	})

	t.Run("upstream failure degrades confidence, not the request", func(t *testing.T) {
		a := newTestAssessor(t, &fakePrecip{failing: true}, clockwork.NewFakeClock())

		result, err := a.FloodRisk(context.Background(), inRegion, assessWin)
		require.NoError(t, err)
		assert.InDelta(t, 0.65, result.Confidence, 1e-9) // rainfall's 0.35 missing
	})
}

func TestAssessorPredictFlood(t *testing.T) {
	now := time.Date(2026, 7, 20, 15, 30, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	precip := &fakePrecip{}
	a := newTestAssessor(t, precip, clock)

	result, err := a.PredictFlood(context.Background(), inRegion)
	require.NoError(t, err)
	assert.Equal(t, models.RiskPrediction, result.Type)
	require.NotNil(t, result.Horizons)

	window, ok := precip.gotWindow.Load().(models.TimeWindow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC), window.End)
	assert.Equal(t, time.Date(2026, 7, 7, 0, 0, 0, 0, time.UTC), window.Start)
}

func TestAssessorGrid(t *testing.T) {
	t.Run("lattice inside region", func(t *testing.T) {
		a := newTestAssessor(t, &fakePrecip{}, clockwork.NewFakeClock())
		bounds := models.BoundingBox{MinLat: 8.5, MinLon: 38.0, MaxLat: 9.5, MaxLon: 39.0}

		gridMap, err := a.EvaluateGrid(context.Background(), bounds, 2, models.RiskFlood, assessWin)
		require.NoError(t, err)
		require.Len(t, gridMap.Points, 9)
		for _, p := range gridMap.Points {
			assert.GreaterOrEqual(t, p.Score, 0.0)
			assert.LessOrEqual(t, p.Score, 1.0)
		}
	})

	t.Run("grid outside region is rejected", func(t *testing.T) {
		a := newTestAssessor(t, &fakePrecip{}, clockwork.NewFakeClock())
		bounds := models.BoundingBox{MinLat: 40.0, MinLon: 2.0, MaxLat: 41.0, MaxLon: 3.0}

		_, err := a.EvaluateGrid(context.Background(), bounds, 2, models.RiskFlood, assessWin)
		require.ErrorIs(t, err, ErrOutOfRegion)
	})

	t.Run("unknown risk type is rejected", func(t *testing.T) {
		a := newTestAssessor(t, &fakePrecip{}, clockwork.NewFakeClock())
		bounds := models.BoundingBox{MinLat: 8.5, MinLon: 38.0, MaxLat: 9.5, MaxLon: 39.0}

		_, err := a.EvaluateGrid(context.Background(), bounds, 2, models.RiskType("volcano"), assessWin)
		require.ErrorIs(t, err, ErrUnknownRisk)
	})
}
