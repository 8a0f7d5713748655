package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Pinger is the part of the pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
}

type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Health is the body of GET /health.
type Health struct {
	Status    string     `json:"status"`
	Version   string     `json:"version"`
	Database  string     `json:"database"`
	LatencyMS int64      `json:"latency_ms"`
	Pool      *PoolStats `json:"pool,omitempty"`
}

func poolStats(stat *pgxpool.Stat) *PoolStats {
	if stat == nil {
		return nil
	}
	return &PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
}

// HealthHandler answers 200 when the database responds within two seconds
// and 503 otherwise.
func HealthHandler(p Pinger, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		err := p.Ping(ctx)
		h := Health{
			Status:    "ok",
			Version:   version,
			Database:  "up",
			LatencyMS: time.Since(start).Milliseconds(),
			Pool:      poolStats(p.Stat()),
		}
		if err != nil {
			h.Status, h.Database = "unhealthy", "down"
			return c.JSON(http.StatusServiceUnavailable, h)
		}
		return c.JSON(http.StatusOK, h)
	}
}
