package models

import "time"

// Sample is one dated numeric observation in an upstream series.
type Sample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// HazardEvent is one discrete historical hazard occurrence.
type HazardEvent struct {
	Date        time.Time `json:"date"`
	Magnitude   float64   `json:"magnitude"`
	AffectedKm2 float64   `json:"affected_km2"`
}

// SeriesSignal is a dated series that is either present or explicitly absent.
// Absence means the upstream fetch yielded nothing usable; it is distinct
// from a present series of zero values.
type SeriesSignal struct {
	Samples []Sample
	Present bool
}

func PresentSeries(samples []Sample) SeriesSignal {
	return SeriesSignal{Samples: samples, Present: len(samples) > 0}
}

func AbsentSeries() SeriesSignal { return SeriesSignal{} }

// Values returns the raw values in sample order.
func (s SeriesSignal) Values() []float64 {
	out := make([]float64, len(s.Samples))
	for i, sm := range s.Samples {
		out[i] = sm.Value
	}
	return out
}

// TerrainSignal is a single-point terrain measurement.
type TerrainSignal struct {
	ElevationM float64
	SlopeDeg   float64
	Present    bool
}

// IndexSignal is a single-point spectral index value (NDVI and the like).
type IndexSignal struct {
	Value   float64
	Present bool
}

// EventsSignal is a list of discrete historical events, or absent.
type EventsSignal struct {
	Events  []HazardEvent
	Present bool
}

// RawSignalBundle holds everything one risk computation needs, gathered once
// per request. Immutable after the gatherer returns it and owned exclusively
// by the composer invocation that requested it.
type RawSignalBundle struct {
	Location      Location
	Window        TimeWindow
	Precipitation SeriesSignal
	Temperature   SeriesSignal
	Terrain       TerrainSignal
	Vegetation    IndexSignal
	Hazards       EventsSignal
}
