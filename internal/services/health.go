package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/agenthub/agenthub/internal/cache"
)

// Ping timeouts for the backing services. A timeout counts as a plain
// failure; nothing retries.
const (
	databasePingTimeout = 5 * time.Second
	cachePingTimeout    = 3 * time.Second
)

// Health checks the backing services.
type Health struct {
	db          *gorm.DB
	cache       *cache.Cache
	environment string
	startedAt   time.Time
}

// NewHealth creates the health service.
func NewHealth(db *gorm.DB, c *cache.Cache, environment string) *Health {
	return &Health{db: db, cache: c, environment: environment, startedAt: time.Now()}
}

// Report is the health endpoint response.
type Report struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Uptime      float64           `json:"uptime"`
	Environment string            `json:"environment"`
	Services    map[string]string `json:"services"`
}

// Healthy reports whether every backing service responded.
func (r Report) Healthy() bool {
	return r.Status == "healthy"
}

// Check pings the database and the cache, each under its own timeout.
func (h *Health) Check(ctx context.Context) Report {
	report := Report{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Uptime:      time.Since(h.startedAt).Seconds(),
		Environment: h.environment,
		Services:    map[string]string{"database": "unhealthy", "redis": "unhealthy"},
	}

	dbCtx, cancel := context.WithTimeout(ctx, databasePingTimeout)
	defer cancel()
	if err := h.db.WithContext(dbCtx).Exec("SELECT 1").Error; err == nil {
		report.Services["database"] = "healthy"
	} else {
		report.Status = "unhealthy"
	}

	cacheCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := h.cache.Ping(cacheCtx); err == nil {
		report.Services["redis"] = "healthy"
	} else {
		report.Status = "unhealthy"
	}

	return report
}

// Ready reports whether the database is reachable. Readiness ignores the
// cache because every operation stays correct without it.
func (h *Health) Ready(ctx context.Context) bool {
	dbCtx, cancel := context.WithTimeout(ctx, databasePingTimeout)
	defer cancel()
	return h.db.WithContext(dbCtx).Exec("SELECT 1").Error == nil
}
