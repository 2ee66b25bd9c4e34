package monitor

import (
	"context"
	"errors"
	"log"
	"net/http"

	"status-monitor/models"
	svc "status-monitor/services/v1"

	"github.com/gin-gonic/gin"
)

type CheckRunner interface {
	RunAllChecks(ctx context.Context) ([]models.HealthCheckResult, error)
}

type RollupRunner interface {
	RunDailyRollup(ctx context.Context) error
}

type StatusSource interface {
	Summary(ctx context.Context) (svc.StatusSummary, error)
}

type Handler struct {
	checks CheckRunner
	rollup RollupRunner
	status StatusSource
}

func NewHandler(checks CheckRunner, rollup RollupRunner, status StatusSource) *Handler {
	return &Handler{checks: checks, rollup: rollup, status: status}
}

// RunChecks runs a full check cycle now and returns every component's verdict.
// Incident errors do not hide the results; they are reported alongside them.
func (h *Handler) RunChecks(c *gin.Context) {
	results, err := h.checks.RunAllChecks(c.Request.Context())
	if errors.Is(err, svc.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"status":  http.StatusConflict,
			"message": "a check cycle is already running",
		})
		return
	}

	body := gin.H{
		"status":  http.StatusOK,
		"results": results,
	}
	code := http.StatusOK
	if err != nil {
		log.Printf("[API] Manual check run finished with errors: %v", err)
		code = http.StatusInternalServerError
		body["status"] = code
		body["error"] = err.Error()
	}
	c.JSON(code, body)
}

func (h *Handler) RunRollup(c *gin.Context) {
	if err := h.rollup.RunDailyRollup(c.Request.Context()); err != nil {
		log.Printf("[API] Manual rollup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "rollup completed",
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	summary, err := h.status.Summary(c.Request.Context())
	if err != nil {
		log.Printf("[API] Failed to build status summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "failed to load status",
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}
