package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"highland-risk/internal/models"
)

// TerrainClient queries the elevation service for point terrain data.
type TerrainClient struct {
	*BaseClient
	baseURL string
}

func NewTerrainClient(baseURL string, cfg ClientConfig, logger *zap.Logger) *TerrainClient {
	return &TerrainClient{
		BaseClient: NewBaseClient("terrain", cfg, logger),
		baseURL:    baseURL,
	}
}

type terrainResponse struct {
	ElevationM float64 `json:"elevation_m"`
	SlopeDeg   float64 `json:"slope_deg"`
}

func (c *TerrainClient) FetchPoint(ctx context.Context, loc models.Location) (float64, float64, error) {
	url := fmt.Sprintf("%s/v1/point?lat=%.4f&lon=%.4f", c.baseURL, loc.Lat, loc.Lon)

	var resp terrainResponse
	if err := c.GetJSON(ctx, url, &resp); err != nil {
		return 0, 0, fmt.Errorf("fetching terrain point: %w", err)
	}
	if resp.SlopeDeg < 0 || resp.SlopeDeg > 90 {
		return 0, 0, fmt.Errorf("terrain service returned slope out of range: %.2f", resp.SlopeDeg)
	}
	return resp.ElevationM, resp.SlopeDeg, nil
}
