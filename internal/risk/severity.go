package risk

import "highland-risk/internal/models"

type severityStep struct {
	Min   float64
	Label string
}

// SeverityScale is an ascending ladder of score thresholds. Steps must start
// at 0 and be strictly increasing, which makes the classification exhaustive
// and monotonic for any score in [0,1].
type SeverityScale []severityStep

func (s SeverityScale) Classify(score float64) models.Severity {
	idx := 0
	for i, step := range s {
		if score >= step.Min {
			idx = i
		}
	}
	return models.Severity{Label: s[idx].Label, Rank: idx}
}

// FloodScale is shared by the flood and flood-prediction composers.
var FloodScale = SeverityScale{
	{Min: 0, Label: "low"},
	{Min: 0.35, Label: "moderate"},
	{Min: 0.55, Label: "high"},
	{Min: 0.75, Label: "extreme"},
}

var DroughtScale = SeverityScale{
	{Min: 0, Label: "none"},
	{Min: 0.2, Label: "mild"},
	{Min: 0.4, Label: "moderate"},
	{Min: 0.6, Label: "severe"},
	{Min: 0.8, Label: "extreme"},
}

// weighted pairs a component score with its fixed weight.
type weighted struct {
	component models.ComponentScore
	weight    float64
}

// compose folds weighted components into the overall score and confidence.
// Overall is the fixed-weight sum clamped to [0,1]; confidence is the weight
// sum of the components whose source data was present, so the weights of a
// composer must add to exactly 1.0.
func compose(parts []weighted) (overall, confidence float64, components []models.ComponentScore) {
	components = make([]models.ComponentScore, 0, len(parts))
	for _, p := range parts {
		overall += p.weight * p.component.Score
		if !p.component.Absent {
			confidence += p.weight
		}
		components = append(components, p.component)
	}
	if overall < 0 {
		overall = 0
	}
	if overall > 1 {
		overall = 1
	}
	return overall, confidence, components
}
