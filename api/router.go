package api

import (
	"net/http"
	"time"

	"status-monitor/api/v1/health"
	"status-monitor/api/v1/monitor"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Checks monitor.CheckRunner
	Rollup monitor.RollupRunner
	Status monitor.StatusSource
	Pings  map[string]health.PingFunc

	// Requests per second allowed on the manual trigger routes, shared by all callers.
	TriggerRPS float64
}

// NewServer builds the HTTP server. The caller owns ListenAndServe and Shutdown.
func NewServer(port string, deps Deps) *http.Server {
	r := gin.Default()

	// Configuração básica de CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	SetupRoutes(r, deps)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	h := monitor.NewHandler(deps.Checks, deps.Rollup, deps.Status)
	hh := health.NewHandler(deps.Pings)

	rps := deps.TriggerRPS
	if rps <= 0 {
		rps = 0.2
	}
	trigger := RateLimit(rate.NewLimiter(rate.Limit(rps), 1))

	v1 := r.Group("/api/v1")
	{
		healthApi := v1.Group("/health")
		{
			healthApi.GET("", hh.GetHealth)
		}

		monitorApi := v1.Group("/monitor", trigger)
		{
			monitorApi.POST("/run", h.RunChecks)
			monitorApi.POST("/rollup", h.RunRollup)
		}

		v1.GET("/status", h.GetStatus)
	}
}
