package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"highland-risk/internal/models"
)

// HazardClient queries the historical-hazard archive for discrete events
// near a point.
type HazardClient struct {
	*BaseClient
	baseURL  string
	radiusKm float64
}

func NewHazardClient(baseURL string, radiusKm float64, cfg ClientConfig, logger *zap.Logger) *HazardClient {
	return &HazardClient{
		BaseClient: NewBaseClient("hazards", cfg, logger),
		baseURL:    baseURL,
		radiusKm:   radiusKm,
	}
}

type hazardEventPayload struct {
	Date        string  `json:"date"`
	Magnitude   float64 `json:"magnitude"`
	AffectedKm2 float64 `json:"affected_km2"`
}

type hazardEventsResponse struct {
	Events []hazardEventPayload `json:"events"`
}

func (c *HazardClient) FetchEvents(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.HazardEvent, error) {
	url := fmt.Sprintf("%s/v1/events?lat=%.4f&lon=%.4f&radius_km=%.1f&start=%s&end=%s",
		c.baseURL, loc.Lat, loc.Lon, c.radiusKm,
		window.Start.Format(dateLayout), window.End.Format(dateLayout))

	var resp hazardEventsResponse
	if err := c.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching hazard events: %w", err)
	}

	events := make([]models.HazardEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		date, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing event date %q: %w", e.Date, err)
		}
		events = append(events, models.HazardEvent{
			Date:        date,
			Magnitude:   e.Magnitude,
			AffectedKm2: e.AffectedKm2,
		})
	}
	return events, nil
}
