package scoring

import "time"

// Band is one step of an ordered bucket ladder: values strictly below UpTo
// score Score. Ladders are evaluated in slice order, so bands must be sorted
// ascending; values past the last band take the ladder's top score.
type Band struct {
	UpTo  float64
	Score float64
}

func ladder(v float64, bands []Band, top float64) float64 {
	for _, b := range bands {
		if v < b.UpTo {
			return b.Score
		}
	}
	return top
}

// RainfallThresholds buckets daily rainfall intensity and rewards sustained
// cumulative totals with a bonus on top of the intensity bucket.
type RainfallThresholds struct {
	DailyBands  []Band  // mm/day
	DailyTop    float64 // score at or beyond the last band
	BonusMidMM  float64 // cumulative total adding +0.1
	BonusHiMM   float64 // cumulative total adding +0.2
	AbsentScore float64
}

// DeficitThresholds buckets percent precipitation anomaly vs the regional
// daily normal. Anomalies are negative in deficit.
type DeficitThresholds struct {
	AnomalyBands []Band // percent anomaly
	Top          float64
	AbsentScore  float64
}

// TemperatureThresholds buckets degrees above the regional mean.
type TemperatureThresholds struct {
	DiffBands   []Band // °C above normal
	Top         float64
	AbsentScore float64
}

// TerrainThresholds blends elevation risk, a U-shaped slope term, and a
// simplified topographic wetness proxy.
type TerrainThresholds struct {
	ElevationBands  []Band // meters
	ElevationTop    float64
	SlopeBands      []Band // degrees
	SlopeTop        float64
	ElevationWeight float64
	SlopeWeight     float64
	WetnessWeight   float64
	AbsentScore     float64
}

// VegetationThresholds buckets NDVI for flood exposure (bare ground sheds
// water fastest, so lower NDVI scores higher).
type VegetationThresholds struct {
	NDVIBands   []Band
	Top         float64
	AbsentScore float64
}

// VegHealthThresholds buckets NDVI percent deviation from the regional
// normal for drought stress.
type VegHealthThresholds struct {
	DeficitBands []Band // percent deviation, negative under stress
	Top          float64
	AbsentScore  float64
}

// SoilMoistureThresholds buckets the derived moisture index (drier → higher).
type SoilMoistureThresholds struct {
	IndexBands  []Band
	Top         float64
	AbsentScore float64
}

// HistoricalThresholds buckets hazard events per year over the lookback and
// boosts recent activity (soil-saturation carryover).
type HistoricalThresholds struct {
	LookbackYears float64
	PerYearBands  []Band
	Top           float64
	RecentBoost   float64 // last event under RecentDays ago
	RecentDays    int
	NearBoost     float64 // last event under NearDays ago
	NearDays      int
	AbsentScore   float64
}

// RegionNormals are the fixed regional baselines scorers compare against.
// Injected at construction so tests and other regions can swap them.
type RegionNormals struct {
	DailyPrecipMM   float64
	MeanTempC       float64
	NDVI            float64
	WetSeasonMonths []time.Month
}

func (n RegionNormals) InWetSeason(m time.Month) bool {
	for _, wm := range n.WetSeasonMonths {
		if wm == m {
			return true
		}
	}
	return false
}

// DefaultNormals are the Ethiopian highland baselines (kiremt wet season).
func DefaultNormals() RegionNormals {
	return RegionNormals{
		DailyPrecipMM:   3.4,
		MeanTempC:       17.5,
		NDVI:            0.45,
		WetSeasonMonths: []time.Month{time.June, time.July, time.August, time.September},
	}
}

func defaultRainfall(absent float64) RainfallThresholds {
	return RainfallThresholds{
		DailyBands: []Band{
			{UpTo: 5, Score: 0.10},
			{UpTo: 10, Score: 0.30},
			{UpTo: 20, Score: 0.50},
			{UpTo: 30, Score: 0.70},
		},
		DailyTop:    0.85,
		BonusMidMM:  100,
		BonusHiMM:   200,
		AbsentScore: absent,
	}
}

func defaultTerrain(absent float64) TerrainThresholds {
	return TerrainThresholds{
		ElevationBands: []Band{
			{UpTo: 800, Score: 0.90},
			{UpTo: 1200, Score: 0.75},
			{UpTo: 1600, Score: 0.55},
			{UpTo: 2200, Score: 0.35},
		},
		ElevationTop: 0.15,
		SlopeBands: []Band{
			{UpTo: 2, Score: 0.80},
			{UpTo: 5, Score: 0.50},
			{UpTo: 15, Score: 0.30},
			{UpTo: 25, Score: 0.50},
		},
		SlopeTop:        0.70,
		ElevationWeight: 0.5,
		SlopeWeight:     0.3,
		WetnessWeight:   0.2,
		AbsentScore:     absent,
	}
}

func defaultVegetation(absent float64) VegetationThresholds {
	return VegetationThresholds{
		NDVIBands: []Band{
			{UpTo: 0.2, Score: 0.90}, // bare
			{UpTo: 0.4, Score: 0.70}, // sparse
			{UpTo: 0.6, Score: 0.40}, // moderate
		},
		Top:         0.10, // dense
		AbsentScore: absent,
	}
}

func defaultHistorical(absent float64) HistoricalThresholds {
	return HistoricalThresholds{
		LookbackYears: 5,
		PerYearBands: []Band{
			{UpTo: 0.2, Score: 0.00},
			{UpTo: 0.4, Score: 0.30},
			{UpTo: 0.8, Score: 0.60},
			{UpTo: 1.5, Score: 0.75},
		},
		Top:         0.90,
		RecentBoost: 0.2,
		RecentDays:  30,
		NearBoost:   0.1,
		NearDays:    90,
		AbsentScore: absent,
	}
}

// FloodThresholds is the injected threshold set for the flood composer.
// Absent signals fall back to a neutral 0.5: an unknown current state is not
// assumed safe.
type FloodThresholds struct {
	Rainfall   RainfallThresholds
	Terrain    TerrainThresholds
	Vegetation VegetationThresholds
	Historical HistoricalThresholds
}

func DefaultFloodThresholds() FloodThresholds {
	const neutral = 0.5
	return FloodThresholds{
		Rainfall:   defaultRainfall(neutral),
		Terrain:    defaultTerrain(neutral),
		Vegetation: defaultVegetation(neutral),
		Historical: defaultHistorical(neutral),
	}
}

// DroughtThresholds is the injected threshold set for the drought composer.
type DroughtThresholds struct {
	Deficit      DeficitThresholds
	Temperature  TemperatureThresholds
	VegHealth    VegHealthThresholds
	SoilMoisture SoilMoistureThresholds
}

func DefaultDroughtThresholds() DroughtThresholds {
	const neutral = 0.5
	return DroughtThresholds{
		Deficit: DeficitThresholds{
			AnomalyBands: []Band{
				{UpTo: -70, Score: 0.95},
				{UpTo: -50, Score: 0.80},
				{UpTo: -30, Score: 0.60},
				{UpTo: -15, Score: 0.40},
				{UpTo: 0, Score: 0.20},
			},
			Top:         0,
			AbsentScore: neutral,
		},
		Temperature: TemperatureThresholds{
			DiffBands: []Band{
				{UpTo: 0, Score: 0.00},
				{UpTo: 1, Score: 0.10},
				{UpTo: 2, Score: 0.30},
				{UpTo: 3, Score: 0.50},
				{UpTo: 4, Score: 0.70},
			},
			Top:         0.90,
			AbsentScore: neutral,
		},
		VegHealth: VegHealthThresholds{
			DeficitBands: []Band{
				{UpTo: -60, Score: 0.90},
				{UpTo: -45, Score: 0.75},
				{UpTo: -30, Score: 0.55},
				{UpTo: -15, Score: 0.35},
				{UpTo: 0, Score: 0.15},
			},
			Top:         0,
			AbsentScore: neutral,
		},
		SoilMoisture: SoilMoistureThresholds{
			IndexBands: []Band{
				{UpTo: 0.10, Score: 0.95},
				{UpTo: 0.20, Score: 0.80},
				{UpTo: 0.30, Score: 0.60},
				{UpTo: 0.45, Score: 0.40},
				{UpTo: 0.60, Score: 0.20},
			},
			Top:         0.05,
			AbsentScore: neutral,
		},
	}
}

// PredictionThresholds reuses the flood ladders but with zero absent
// fallbacks: missing data must not manufacture forecast risk.
type PredictionThresholds struct {
	Rainfall    RainfallThresholds
	Terrain     TerrainThresholds
	Vegetation  VegetationThresholds
	Historical  HistoricalThresholds
	RecentDays  int // trailing slice of the precipitation series scored as "recent"
	SeasonBoost float64
}

func DefaultPredictionThresholds() PredictionThresholds {
	return PredictionThresholds{
		Rainfall:    defaultRainfall(0),
		Terrain:     defaultTerrain(0),
		Vegetation:  defaultVegetation(0),
		Historical:  defaultHistorical(0),
		RecentDays:  7,
		SeasonBoost: 0.15,
	}
}
