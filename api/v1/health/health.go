package health

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks one dependency of the monitor.
type PingFunc func(ctx context.Context) error

// Handler reports liveness of the monitor and its stores.
type Handler struct {
	pings   map[string]PingFunc
	timeout time.Duration
}

func NewHandler(pings map[string]PingFunc) *Handler {
	return &Handler{pings: pings, timeout: 2 * time.Second}
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.pings))
	for name := range h.pings {
		names = append(names, name)
	}
	sort.Strings(names)

	code := http.StatusOK
	deps := gin.H{}
	for _, name := range names {
		if err := h.pings[name](ctx); err != nil {
			log.Printf("[API] Health: %s unreachable: %v", name, err)
			deps[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	message := "ok"
	if code != http.StatusOK {
		message = "degraded"
	}
	c.JSON(code, gin.H{
		"status":       code,
		"message":      message,
		"dependencies": deps,
	})
}
