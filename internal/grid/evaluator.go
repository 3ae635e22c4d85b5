// Package grid evaluates one risk computation across a regular lattice of
// points for map rendering.
package grid

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"highland-risk/internal/models"
	"highland-risk/internal/observability"
)

// PointFunc computes the overall risk score for a single lattice point.
type PointFunc func(ctx context.Context, loc models.Location) (float64, error)

type Evaluator struct {
	batchSize int
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewEvaluator bounds in-flight point computations to batchSize so a grid
// request cannot stampede the upstream collaborators.
func NewEvaluator(batchSize int, metrics *observability.Metrics, logger *zap.Logger) *Evaluator {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Evaluator{batchSize: batchSize, metrics: metrics, logger: logger}
}

// Evaluate computes fn over a (size+1)x(size+1) lattice covering bounds, in
// row-major order, batch by batch. A failed point degrades to score zero;
// the batch and the grid always complete.
func (e *Evaluator) Evaluate(ctx context.Context, bounds models.BoundingBox, size int, fn PointFunc) []models.GridPoint {
	if size < 1 {
		size = 1
	}

	latStep := (bounds.MaxLat - bounds.MinLat) / float64(size)
	lonStep := (bounds.MaxLon - bounds.MinLon) / float64(size)

	points := make([]models.GridPoint, 0, (size+1)*(size+1))
	for row := 0; row <= size; row++ {
		for col := 0; col <= size; col++ {
			points = append(points, models.GridPoint{
				Location: models.Location{
					Lat: bounds.MinLat + float64(row)*latStep,
					Lon: bounds.MinLon + float64(col)*lonStep,
				},
			})
		}
	}

	for start := 0; start < len(points); start += e.batchSize {
		end := start + e.batchSize
		if end > len(points) {
			end = len(points)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				score, err := fn(ctx, points[i].Location)
				if err != nil {
					e.logger.Warn("grid point evaluation failed, degrading to zero",
						zap.Float64("lat", points[i].Location.Lat),
						zap.Float64("lon", points[i].Location.Lon),
						zap.Error(err))
					score = 0
				}
				points[i].Score = score
				e.metrics.GridPoints.Inc()
			}(i)
		}
		wg.Wait()
	}

	return points
}
