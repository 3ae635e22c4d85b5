// Package gather fans out to the upstream collaborators for one risk
// computation and fans back in to a complete RawSignalBundle. A failed or
// panicking fetch degrades to an absent signal; the gatherer itself never
// returns an error and never retries (retry policy lives in the clients).
package gather

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"highland-risk/internal/models"
	"highland-risk/internal/observability"
)

type PrecipitationSource interface {
	FetchPrecipitation(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error)
}

type TemperatureSource interface {
	FetchTemperature(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error)
}

type TerrainSource interface {
	FetchPoint(ctx context.Context, loc models.Location) (elevationM, slopeDeg float64, err error)
}

type VegetationSource interface {
	FetchIndex(ctx context.Context, loc models.Location) (float64, error)
}

type HazardHistorySource interface {
	FetchEvents(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.HazardEvent, error)
}

// Sources bundles the collaborator clients. A nil entry means the signal is
// not wired and always gathers as absent.
type Sources struct {
	Precipitation PrecipitationSource
	Temperature   TemperatureSource
	Terrain       TerrainSource
	Vegetation    VegetationSource
	Hazards       HazardHistorySource
}

// SignalSet selects which signals a risk type needs, so composers do not pay
// for fetches they will never score.
type SignalSet struct {
	Precipitation bool
	Temperature   bool
	Terrain       bool
	Vegetation    bool
	Hazards       bool
}

type Gatherer struct {
	sources       Sources
	lookbackYears int
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// New builds a gatherer. lookbackYears widens the hazard-history fetch: the
// frequency scorer's denominator is a fixed number of years, so the archive
// is always asked for that many years back from the window's end regardless
// of how short the precipitation window is.
func New(sources Sources, lookbackYears int, metrics *observability.Metrics, logger *zap.Logger) *Gatherer {
	return &Gatherer{sources: sources, lookbackYears: lookbackYears, metrics: metrics, logger: logger}
}

// Gather issues one concurrent fetch per requested signal and returns once
// every fetch has settled. Partial failure is the normal case, not an error.
func (g *Gatherer) Gather(ctx context.Context, loc models.Location, window models.TimeWindow, set SignalSet) models.RawSignalBundle {
	bundle := models.RawSignalBundle{Location: loc, Window: window}

	var wg sync.WaitGroup

	if set.Precipitation && g.sources.Precipitation != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.absorb("precipitation", &bundle.Precipitation.Present)
			samples, err := g.sources.Precipitation.FetchPrecipitation(ctx, loc, window)
			if err != nil {
				g.failed("precipitation", err)
				return
			}
			bundle.Precipitation = models.PresentSeries(samples)
		}()
	}

	if set.Temperature && g.sources.Temperature != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.absorb("temperature", &bundle.Temperature.Present)
			samples, err := g.sources.Temperature.FetchTemperature(ctx, loc, window)
			if err != nil {
				g.failed("temperature", err)
				return
			}
			bundle.Temperature = models.PresentSeries(samples)
		}()
	}

	if set.Terrain && g.sources.Terrain != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.absorb("terrain", &bundle.Terrain.Present)
			elev, slope, err := g.sources.Terrain.FetchPoint(ctx, loc)
			if err != nil {
				g.failed("terrain", err)
				return
			}
			bundle.Terrain = models.TerrainSignal{ElevationM: elev, SlopeDeg: slope, Present: true}
		}()
	}

	if set.Vegetation && g.sources.Vegetation != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.absorb("vegetation", &bundle.Vegetation.Present)
			ndvi, err := g.sources.Vegetation.FetchIndex(ctx, loc)
			if err != nil {
				g.failed("vegetation", err)
				return
			}
			bundle.Vegetation = models.IndexSignal{Value: ndvi, Present: true}
		}()
	}

	if set.Hazards && g.sources.Hazards != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.absorb("hazards", &bundle.Hazards.Present)
			hazardWindow := window
			if g.lookbackYears > 0 {
				hazardWindow.Start = window.End.AddDate(-g.lookbackYears, 0, 0)
			}
			events, err := g.sources.Hazards.FetchEvents(ctx, loc, hazardWindow)
			if err != nil {
				g.failed("hazards", err)
				return
			}
			bundle.Hazards = models.EventsSignal{Events: events, Present: true}
		}()
	}

	wg.Wait()
	return bundle
}

// absorb turns a panicking fetch into an absent signal so one misbehaving
// client cannot take down the whole request.
func (g *Gatherer) absorb(signal string, present *bool) {
	if r := recover(); r != nil {
		*present = false
		g.logger.Error("collaborator fetch panicked",
			zap.String("signal", signal),
			zap.Any("panic", r))
		g.metrics.UpstreamFailures.WithLabelValues(signal).Inc()
	}
}

func (g *Gatherer) failed(signal string, err error) {
	g.logger.Warn("collaborator fetch failed, treating signal as absent",
		zap.String("signal", signal),
		zap.Error(err))
	g.metrics.UpstreamFailures.WithLabelValues(signal).Inc()
}

// FloodSignals covers the flood and prediction composers' inputs.
func FloodSignals() SignalSet {
	return SignalSet{Precipitation: true, Terrain: true, Vegetation: true, Hazards: true}
}

func DroughtSignals() SignalSet {
	return SignalSet{Precipitation: true, Temperature: true, Vegetation: true}
}
