package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// AdminConfig configures the admin HTTP surface that sits beside an MCTP
// listener. It never serves documents.
type AdminConfig struct {
	Node        string
	Addr        string
	CorsOrigins []string
	Started     time.Time
	// Mode is the gin mode set before the engine is built; empty means
	// gin.ReleaseMode.
	Mode string
	// Ready reports whether the MCTP listener is accepting.
	Ready func() bool
}

// NewAdminRouter builds the gin engine exposing /health, /ready and /metrics.
func NewAdminRouter(cfg AdminConfig) *gin.Engine {
	RegisterMetrics()
	if cfg.Started.IsZero() {
		cfg.Started = time.Now()
	}

	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AdminObserver(log.Logger, cfg.Node))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(cfg.Started).String(),
			"node":    cfg.Node,
			"version": Version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := cfg.Ready == nil || cfg.Ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready": ready,
			"node":  cfg.Node,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if v := strings.TrimSpace(o); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
