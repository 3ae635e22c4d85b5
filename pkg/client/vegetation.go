package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"highland-risk/internal/models"
)

// VegetationClient queries the vegetation-index service for point NDVI.
type VegetationClient struct {
	*BaseClient
	baseURL string
}

func NewVegetationClient(baseURL string, cfg ClientConfig, logger *zap.Logger) *VegetationClient {
	return &VegetationClient{
		BaseClient: NewBaseClient("vegetation", cfg, logger),
		baseURL:    baseURL,
	}
}

type vegetationResponse struct {
	NDVI float64 `json:"ndvi"`
}

func (c *VegetationClient) FetchIndex(ctx context.Context, loc models.Location) (float64, error) {
	url := fmt.Sprintf("%s/v1/ndvi?lat=%.4f&lon=%.4f", c.baseURL, loc.Lat, loc.Lon)

	var resp vegetationResponse
	if err := c.GetJSON(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("fetching NDVI: %w", err)
	}
	if resp.NDVI < -1 || resp.NDVI > 1 {
		return 0, fmt.Errorf("vegetation service returned NDVI out of range: %.3f", resp.NDVI)
	}
	return resp.NDVI, nil
}
