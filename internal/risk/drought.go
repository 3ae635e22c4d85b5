package risk

import (
	"highland-risk/internal/models"
	"highland-risk/internal/scoring"
)

const (
	WeightDroughtDeficit     = 0.40
	WeightDroughtTemperature = 0.25
	WeightDroughtVegetation  = 0.25
	WeightDroughtSoil        = 0.10
)

type DroughtComposer struct {
	th      scoring.DroughtThresholds
	normals scoring.RegionNormals
}

func NewDroughtComposer(th scoring.DroughtThresholds, normals scoring.RegionNormals) *DroughtComposer {
	return &DroughtComposer{th: th, normals: normals}
}

func (c *DroughtComposer) Weights() map[string]float64 {
	return map[string]float64{
		scoring.ComponentPrecipitationDeficit: WeightDroughtDeficit,
		scoring.ComponentTemperatureAnomaly:   WeightDroughtTemperature,
		scoring.ComponentVegetationHealth:     WeightDroughtVegetation,
		scoring.ComponentSoilMoisture:         WeightDroughtSoil,
	}
}

func (c *DroughtComposer) Compose(bundle models.RawSignalBundle) models.CompositeRiskResult {
	deficit := scoring.PrecipitationDeficit(bundle.Precipitation, c.normals, c.th.Deficit)
	temperature := scoring.TemperatureAnomaly(bundle.Temperature, c.normals, c.th.Temperature)
	vegetation := scoring.VegetationHealth(bundle.Vegetation, c.normals, c.th.VegHealth)
	soil := scoring.SoilMoisture(bundle.Precipitation, bundle.Vegetation, c.normals, c.th.SoilMoisture)

	overall, confidence, components := compose([]weighted{
		{deficit, WeightDroughtDeficit},
		{temperature, WeightDroughtTemperature},
		{vegetation, WeightDroughtVegetation},
		{soil, WeightDroughtSoil},
	})

	severity := DroughtScale.Classify(overall)

	return models.CompositeRiskResult{
		Type:            models.RiskDrought,
		Location:        bundle.Location,
		Overall:         overall,
		Severity:        severity,
		Confidence:      confidence,
		Components:      components,
		Recommendations: droughtRecommendations(severity, components),
	}
}
