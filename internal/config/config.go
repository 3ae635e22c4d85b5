package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"highland-risk/internal/models"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		MetricsAddr  string
	}

	Sources struct {
		ClimateURL     string
		TerrainURL     string
		VegetationURL  string
		HazardsURL     string
		HazardRadiusKm float64
		PollInterval   time.Duration
		MaxPolls       int
	}

	Client struct {
		Timeout        time.Duration
		MaxRetries     int
		RetryDelay     time.Duration
		Multiplier     float64
		BreakerTimeout time.Duration
	}

	Region struct {
		Bounds        models.BoundingBox
		DailyPrecipMM float64
		MeanTempC     float64
		NDVI          float64
	}

	Risk struct {
		PredictionDays int
		LookbackYears  int
		GridBatchSize  int
	}

	Cache struct {
		TTL     time.Duration
		MaxSize int
	}

	Scheduler struct {
		CronSpec       string
		WatchLocations []models.Location
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("SERVER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "30s"))
	cfg.Server.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

	// Collaborator endpoints
	cfg.Sources.ClimateURL = getEnv("CLIMATE_API_URL", "http://localhost:8101")
	cfg.Sources.TerrainURL = getEnv("TERRAIN_API_URL", "http://localhost:8102")
	cfg.Sources.VegetationURL = getEnv("VEGETATION_API_URL", "http://localhost:8103")
	cfg.Sources.HazardsURL = getEnv("HAZARDS_API_URL", "http://localhost:8104")
	cfg.Sources.HazardRadiusKm = parseFloat(getEnv("HAZARD_RADIUS_KM", "25"))
	cfg.Sources.PollInterval = parseDuration(getEnv("EXTRACT_POLL_INTERVAL", "2s"))
	cfg.Sources.MaxPolls = parseInt(getEnv("EXTRACT_MAX_POLLS", "15"))

	// Shared HTTP client configuration
	cfg.Client.Timeout = parseDuration(getEnv("CLIENT_TIMEOUT", "10s"))
	cfg.Client.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Client.RetryDelay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Client.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))
	cfg.Client.BreakerTimeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Operational region (defaults cover Ethiopia)
	cfg.Region.Bounds = models.BoundingBox{
		MinLat: parseFloat(getEnv("REGION_MIN_LAT", "3.4")),
		MinLon: parseFloat(getEnv("REGION_MIN_LON", "33.0")),
		MaxLat: parseFloat(getEnv("REGION_MAX_LAT", "14.9")),
		MaxLon: parseFloat(getEnv("REGION_MAX_LON", "48.0")),
	}
	cfg.Region.DailyPrecipMM = parseFloat(getEnv("NORMAL_DAILY_PRECIP_MM", "3.4"))
	cfg.Region.MeanTempC = parseFloat(getEnv("NORMAL_MEAN_TEMP_C", "17.5"))
	cfg.Region.NDVI = parseFloat(getEnv("NORMAL_NDVI", "0.45"))

	// Risk engine configuration
	cfg.Risk.PredictionDays = parseInt(getEnv("PREDICTION_HISTORY_DAYS", "14"))
	cfg.Risk.LookbackYears = parseInt(getEnv("HAZARD_LOOKBACK_YEARS", "5"))
	cfg.Risk.GridBatchSize = parseInt(getEnv("GRID_BATCH_SIZE", "5"))

	// Cache configuration
	cfg.Cache.TTL = parseDuration(getEnv("CACHE_TTL", "10m"))
	cfg.Cache.MaxSize = parseInt(getEnv("CACHE_MAX_SIZE", "1000"))

	// Scheduler configuration
	cfg.Scheduler.CronSpec = getEnv("SWEEP_CRON", "@every 6h")
	cfg.Scheduler.WatchLocations = parseLocations(getEnv("WATCH_LOCATIONS", "9.03,38.74;11.60,37.39;7.06,38.48"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}

// parseLocations parses "lat,lon;lat,lon;…" pairs, skipping malformed entries.
func parseLocations(value string) []models.Location {
	var locations []models.Location
	for _, pair := range strings.Split(value, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat != nil || errLon != nil {
			zap.L().Warn("Failed to parse watch location", zap.String("value", pair))
			continue
		}
		locations = append(locations, models.Location{Lat: lat, Lon: lon})
	}
	return locations
}
