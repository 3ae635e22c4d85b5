package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"highland-risk/internal/models"
)

type cacheItem struct {
	result    models.CompositeRiskResult
	expiresAt time.Time
}

// ResultCache is a TTL cache for composed risk results, keyed by risk type,
// rounded coordinates, and window. It sits strictly in the serving layer;
// the composers themselves never cache.
type ResultCache struct {
	mu              sync.RWMutex
	items           map[string]cacheItem
	ttl             time.Duration
	maxSize         int
	cleanupInterval time.Duration
	clock           clockwork.Clock
	logger          *zap.Logger
	stopCleanup     chan struct{}
}

func NewResultCache(ttl time.Duration, maxSize int, clock clockwork.Clock, logger *zap.Logger) *ResultCache {
	c := &ResultCache{
		items:           make(map[string]cacheItem),
		ttl:             ttl,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		clock:           clock,
		logger:          logger,
		stopCleanup:     make(chan struct{}),
	}
	go c.runCleanup()
	return c
}

func cacheKey(riskType models.RiskType, loc models.Location, window models.TimeWindow) string {
	// Coordinates rounded to ~100m so nearby repeat requests share an entry.
	return fmt.Sprintf("%s|%.3f|%.3f|%s|%s",
		riskType, loc.Lat, loc.Lon,
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
}

func (c *ResultCache) Get(riskType models.RiskType, loc models.Location, window models.TimeWindow) (models.CompositeRiskResult, bool) {
	key := cacheKey(riskType, loc, window)

	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return models.CompositeRiskResult{}, false
	}
	if c.clock.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return models.CompositeRiskResult{}, false
	}
	return item.result, true
}

func (c *ResultCache) Set(result models.CompositeRiskResult, window models.TimeWindow) {
	key := cacheKey(result.Type, result.Location, window)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.items[key] = cacheItem{
		result:    result,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *ResultCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("evicted oldest cached result", zap.String("key", oldestKey))
	}
}

func (c *ResultCache) runCleanup() {
	ticker := c.clock.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *ResultCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	expired := 0
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			expired++
		}
	}
	if expired > 0 {
		c.logger.Debug("cleaned expired cached results", zap.Int("count", expired))
	}
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *ResultCache) Stop() {
	close(c.stopCleanup)
}
