package grid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"highland-risk/internal/models"
	"highland-risk/internal/observability"
)

func testEvaluator(batchSize int) *Evaluator {
	return NewEvaluator(batchSize, observability.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
}

var testBounds = models.BoundingBox{MinLat: 9.0, MinLon: 38.0, MaxLat: 10.0, MaxLon: 39.0}

func TestEvaluate(t *testing.T) {
	t.Run("size 2 yields a 3x3 lattice in row-major order", func(t *testing.T) {
		e := testEvaluator(5)

		points := e.Evaluate(context.Background(), testBounds, 2, func(ctx context.Context, loc models.Location) (float64, error) {
			return 0.42, nil
		})

		require.Len(t, points, 9)
		assert.Equal(t, models.Location{Lat: 9.0, Lon: 38.0}, points[0].Location)
		assert.Equal(t, models.Location{Lat: 9.0, Lon: 38.5}, points[1].Location)
		assert.Equal(t, models.Location{Lat: 9.5, Lon: 38.0}, points[3].Location)
		assert.Equal(t, models.Location{Lat: 10.0, Lon: 39.0}, points[8].Location)
		for _, p := range points {
			assert.GreaterOrEqual(t, p.Score, 0.0)
			assert.LessOrEqual(t, p.Score, 1.0)
		}
	})

	t.Run("one failing point degrades to zero without aborting", func(t *testing.T) {
		e := testEvaluator(5)

		var calls int32
		points := e.Evaluate(context.Background(), testBounds, 2, func(ctx context.Context, loc models.Location) (float64, error) {
			if atomic.AddInt32(&calls, 1) == 5 {
				return 0, errors.New("upstream unavailable")
			}
			return 0.8, nil
		})

		require.Len(t, points, 9)
		zeros := 0
		for _, p := range points {
			if p.Score == 0 {
				zeros++
			} else {
				assert.Equal(t, 0.8, p.Score)
			}
		}
		assert.Equal(t, 1, zeros)
	})

	t.Run("in-flight points never exceed the batch size", func(t *testing.T) {
		e := testEvaluator(3)

		var mu sync.Mutex
		inFlight, peak := 0, 0

		e.Evaluate(context.Background(), testBounds, 3, func(ctx context.Context, loc models.Location) (float64, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			defer func() {
				mu.Lock()
				inFlight--
				mu.Unlock()
			}()
			return 0.1, nil
		})

		assert.LessOrEqual(t, peak, 3)
	})

	t.Run("degenerate size is coerced to one", func(t *testing.T) {
		e := testEvaluator(5)

		points := e.Evaluate(context.Background(), testBounds, 0, func(ctx context.Context, loc models.Location) (float64, error) {
			return 0.5, nil
		})

		assert.Len(t, points, 4)
	})
}
