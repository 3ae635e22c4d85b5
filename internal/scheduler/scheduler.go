// Package scheduler periodically re-assesses a fixed set of watch locations
// so elevated conditions are logged without waiting for a caller, and the
// result cache stays warm for the dashboard's default views.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"highland-risk/internal/models"
	"highland-risk/internal/services"
)

type Sweeper struct {
	assessor  *services.Assessor
	locations []models.Location
	spec      string
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewSweeper(assessor *services.Assessor, locations []models.Location, spec string, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		assessor:  assessor,
		locations: locations,
		spec:      spec,
		cron:      cron.New(),
		logger:    logger,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("risk sweep scheduled",
		zap.String("spec", s.spec),
		zap.Int("locations", len(s.locations)))

	// First sweep runs immediately rather than waiting a full interval.
	go s.sweep()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("risk sweep stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	window := models.TimeWindow{
		Start: start.UTC().AddDate(0, 0, -30),
		End:   start.UTC(),
	}

	for _, loc := range s.locations {
		for _, check := range []func() (models.CompositeRiskResult, error){
			func() (models.CompositeRiskResult, error) { return s.assessor.FloodRisk(ctx, loc, window) },
			func() (models.CompositeRiskResult, error) { return s.assessor.DroughtRisk(ctx, loc, window) },
		} {
			result, err := check()
			if err != nil {
				s.logger.Error("sweep assessment failed",
					zap.Float64("lat", loc.Lat),
					zap.Float64("lon", loc.Lon),
					zap.Error(err))
				continue
			}
			if result.Severity.Rank >= 2 {
				s.logger.Warn("elevated risk at watch location",
					zap.String("type", string(result.Type)),
					zap.Float64("lat", loc.Lat),
					zap.Float64("lon", loc.Lon),
					zap.String("severity", result.Severity.Label),
					zap.Float64("score", result.Overall))
			}
		}
	}

	s.logger.Info("risk sweep completed",
		zap.Int("locations", len(s.locations)),
		zap.Duration("duration", time.Since(start)))
}
