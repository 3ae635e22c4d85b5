package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"highland-risk/internal/models"
)

const dateLayout = "2006-01-02"

// ClimateClient talks to the climate archive. Daily temperature is a plain
// synchronous query; precipitation extracts are asynchronous on the archive
// side (submit a job, poll it, fetch the series), which this client hides
// behind a single blocking call with a bounded poll loop.
type ClimateClient struct {
	*BaseClient
	baseURL      string
	pollInterval time.Duration
	maxPolls     int
}

func NewClimateClient(baseURL string, cfg ClientConfig, pollInterval time.Duration, maxPolls int, logger *zap.Logger) *ClimateClient {
	return &ClimateClient{
		BaseClient:   NewBaseClient("climate", cfg, logger),
		baseURL:      baseURL,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

type samplePayload struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type extractJobResponse struct {
	JobID  string          `json:"job_id"`
	Status string          `json:"status"` // queued | running | ready | failed
	Series []samplePayload `json:"series,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type dailySeriesResponse struct {
	Series []samplePayload `json:"series"`
}

// FetchPrecipitation submits an extract job for the window and polls it to
// completion. The poll loop is bounded both by maxPolls and by the caller's
// context, so the gatherer always sees the call settle.
func (c *ClimateClient) FetchPrecipitation(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error) {
	submitURL := fmt.Sprintf("%s/v1/extracts", c.baseURL)
	request := map[string]interface{}{
		"lat":      loc.Lat,
		"lon":      loc.Lon,
		"start":    window.Start.Format(dateLayout),
		"end":      window.End.Format(dateLayout),
		"variable": "precipitation_sum",
	}

	var job extractJobResponse
	if err := c.PostJSON(ctx, submitURL, request, &job); err != nil {
		return nil, fmt.Errorf("submitting precipitation extract: %w", err)
	}
	if job.JobID == "" {
		return nil, fmt.Errorf("archive returned no job id")
	}

	statusURL := fmt.Sprintf("%s/v1/extracts/%s", c.baseURL, job.JobID)
	for poll := 0; poll < c.maxPolls; poll++ {
		switch job.Status {
		case "ready":
			return decodeSamples(job.Series)
		case "failed":
			return nil, fmt.Errorf("precipitation extract failed: %s", job.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		if err := c.GetJSON(ctx, statusURL, &job); err != nil {
			return nil, fmt.Errorf("polling precipitation extract: %w", err)
		}
	}

	return nil, fmt.Errorf("precipitation extract %s not ready after %d polls", job.JobID, c.maxPolls)
}

// FetchTemperature queries the archive's synchronous daily endpoint.
func (c *ClimateClient) FetchTemperature(ctx context.Context, loc models.Location, window models.TimeWindow) ([]models.Sample, error) {
	url := fmt.Sprintf("%s/v1/daily?lat=%.4f&lon=%.4f&start=%s&end=%s&variable=temperature_2m_mean",
		c.baseURL, loc.Lat, loc.Lon,
		window.Start.Format(dateLayout), window.End.Format(dateLayout))

	var resp dailySeriesResponse
	if err := c.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetching temperature series: %w", err)
	}
	return decodeSamples(resp.Series)
}

func decodeSamples(payload []samplePayload) ([]models.Sample, error) {
	samples := make([]models.Sample, 0, len(payload))
	for _, p := range payload {
		date, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing sample date %q: %w", p.Date, err)
		}
		samples = append(samples, models.Sample{Date: date, Value: p.Value})
	}
	return samples, nil
}
