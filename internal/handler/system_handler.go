package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/database"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/redis/go-redis/v9"
)

// CacheSizer reports how many entries the in-process permission tier holds.
type CacheSizer interface {
	Len() int
}

// SystemHandler reports liveness and runtime metrics.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	memory    CacheSizer
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. A nil pool is reported as
// disabled by Health.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, memory CacheSizer) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		memory:    memory,
		startTime: time.Now(),
	}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	st := database.Check(c.Request.Context(), h.pool, h.rdb)
	code := http.StatusOK
	if !st.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": map[bool]string{true: "ok", false: "degraded"}[st.Healthy()],
		"stores": st,
	})
}

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	// Access layer
	PermissionCacheEntries int   `json:"permission_cache_entries"`
	QueueAudit             int64 `json:"queue_audit"`
}

// Metrics godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) Metrics(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.Sys,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}
	if h.memory != nil {
		m.PermissionCacheEntries = h.memory.Len()
	}
	m.QueueAudit, _ = h.rdb.LLen(c.Request.Context(), config.WorkerKey.PersistAccessAuditQueue).Result()

	response.Success(c, http.StatusOK, m)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
