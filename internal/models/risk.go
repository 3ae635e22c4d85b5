package models

import (
	"time"
)

type RiskType string

const (
	RiskFlood      RiskType = "flood"
	RiskDrought    RiskType = "drought"
	RiskPrediction RiskType = "flood_prediction"
)

// Severity is an ordered label derived from the composite score. The label
// sets differ per risk type (flood uses low..extreme, drought none..extreme);
// Rank orders them within one type.
type Severity struct {
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TimeWindow is an inclusive calendar date range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && !w.Start.After(w.End)
}

// Days returns the inclusive number of calendar days covered by the window.
func (w TimeWindow) Days() int {
	if !w.Valid() {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.MinLat && loc.Lat <= b.MaxLat &&
		loc.Lon >= b.MinLon && loc.Lon <= b.MaxLon
}

// ComponentScore is one factor's normalized contribution plus its
// descriptive sub-metrics.
type ComponentScore struct {
	Name    string             `json:"name"`
	Score   float64            `json:"score"` // always clamped to [0,1]
	Absent  bool               `json:"absent,omitempty"`
	Details map[string]float64 `json:"details,omitempty"`
}

// HorizonScores carries the prediction composer's time-horizon adjustments.
type HorizonScores struct {
	Next24h   float64 `json:"next_24h"`
	Next3Days float64 `json:"next_3_days"`
	Next7Days float64 `json:"next_7_days"`
	Trend     string  `json:"trend"`
}

// CompositeRiskResult is the engine's single output record. Overall is the
// fixed-weight sum of the component scores, clamped to [0,1]; Confidence is
// the weight-sum of the components whose source data was actually present.
type CompositeRiskResult struct {
	Type            RiskType         `json:"type"`
	Location        Location         `json:"location"`
	Overall         float64          `json:"overall_score"`
	Severity        Severity         `json:"severity"`
	Confidence      float64          `json:"confidence"`
	Components      []ComponentScore `json:"components"`
	Horizons        *HorizonScores   `json:"horizons,omitempty"`
	Recommendations []string         `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

type GridPoint struct {
	Location Location `json:"location"`
	Score    float64  `json:"score"`
}

// GridRiskMap covers a (size+1)x(size+1) lattice over Bounds in row-major
// order. Request-scoped; never persisted.
type GridRiskMap struct {
	Type        RiskType    `json:"type"`
	Bounds      BoundingBox `json:"bounds"`
	Size        int         `json:"grid_size"`
	Points      []GridPoint `json:"points"`
	GeneratedAt time.Time   `json:"generated_at"`
}
