package risk

import (
	"highland-risk/internal/models"
	"highland-risk/internal/scoring"
)

func findComponent(components []models.ComponentScore, name string) (models.ComponentScore, bool) {
	for _, c := range components {
		if c.Name == name {
			return c, true
		}
	}
	return models.ComponentScore{}, false
}

// floodRecommendations emits ordered advisories: severity-triggered general
// guidance first, then component-specific warnings. Falls back to a single
// low-risk message when nothing applies.
func floodRecommendations(sev models.Severity, components []models.ComponentScore) []string {
	var recs []string

	switch sev.Label {
	case "extreme":
		recs = append(recs,
			"Extreme flood risk: avoid low-lying areas and river crossings; follow evacuation guidance from local authorities.",
			"Move livestock and stored grain to higher ground immediately.")
	case "high":
		recs = append(recs,
			"High flood risk: prepare an evacuation plan and monitor water levels closely over the coming days.")
	case "moderate":
		recs = append(recs,
			"Moderate flood risk: review drainage around homesteads and keep emergency supplies accessible.")
	}

	if terrain, ok := findComponent(components, scoring.ComponentTerrain); ok && !terrain.Absent {
		if elev, ok := terrain.Details["elevation_m"]; ok && elev < 1200 {
			recs = append(recs, "This location sits at low elevation for the region; runoff from surrounding highlands can accumulate quickly.")
		}
	}
	if veg, ok := findComponent(components, scoring.ComponentVegetationCover); ok && !veg.Absent && veg.Score >= 0.7 {
		recs = append(recs, "Sparse ground cover offers little infiltration; expect rapid surface runoff during heavy rain.")
	}
	if hist, ok := findComponent(components, scoring.ComponentHistoricalFrequency); ok && !hist.Absent && hist.Score >= 0.6 {
		recs = append(recs, "Flooding has recurred at this location in recent years; past inundation extents are a good guide to exposure.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Flood risk is currently low for this location.")
	}
	return recs
}

func droughtRecommendations(sev models.Severity, components []models.ComponentScore) []string {
	var recs []string

	switch sev.Label {
	case "extreme":
		recs = append(recs,
			"Extreme drought conditions: prioritize drinking water for households and livestock; coordinate with district water offices.",
			"Consider destocking before animal body condition collapses.")
	case "severe":
		recs = append(recs,
			"Severe drought conditions: ration irrigation, switch to drought-tolerant crop varieties where planting is still possible.")
	case "moderate":
		recs = append(recs,
			"Moderate drought stress: reduce non-essential water use and monitor pasture condition weekly.")
	case "mild":
		recs = append(recs,
			"Mild precipitation deficit: no action required yet, but track the next dekadal rainfall update.")
	}

	if deficit, ok := findComponent(components, scoring.ComponentPrecipitationDeficit); ok && !deficit.Absent && deficit.Score >= 0.8 {
		recs = append(recs, "Rainfall is far below the seasonal normal; plan for supplemental water sources before shallow wells fail.")
	}
	if veg, ok := findComponent(components, scoring.ComponentVegetationHealth); ok && !veg.Absent && veg.Score >= 0.55 {
		recs = append(recs, "Vegetation indices show significant stress; forage availability is likely declining.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Drought risk is currently low for this location.")
	}
	return recs
}

func predictionRecommendations(sev models.Severity, horizons *models.HorizonScores) []string {
	var recs []string

	switch sev.Label {
	case "extreme":
		recs = append(recs, "Flooding is likely within the next 24 hours: act on preparedness plans now.")
	case "high":
		recs = append(recs, "Elevated flood likelihood over the coming week: keep drainage clear and valuables off the ground.")
	case "moderate":
		recs = append(recs, "Some flood potential in the next seven days: stay alert to heavy-rain warnings.")
	}

	if horizons != nil && horizons.Trend == scoring.TrendIncreasing {
		recs = append(recs, "Rainfall has been intensifying over recent days; conditions may deteriorate faster than the base score suggests.")
	}

	if len(recs) == 0 {
		recs = append(recs, "No significant flood signal for the coming week at this location.")
	}
	return recs
}
