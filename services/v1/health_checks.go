package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"status-monitor/models"
)

const (
	// DefaultCheckTimeout bounds a single check.
	DefaultCheckTimeout = 10 * time.Second

	// Latency thresholds in milliseconds.
	LatencyDegradedMs      = 2000
	LatencyPartialOutageMs = 5000

	maxDeepBodyBytes = 64 << 10
)

// Checker performs one request per call and classifies the response.
type Checker struct {
	client  *http.Client
	timeout time.Duration
	now     Clock
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{
		client:  &http.Client{},
		timeout: timeout,
		now:     time.Now,
	}
}

// Check requests the component and never fails: every failure mode is encoded
// in the returned result.
func (c *Checker) Check(ctx context.Context, comp models.ComponentConfig) models.HealthCheckResult {
	result := models.HealthCheckResult{
		ComponentID:   comp.ID,
		ComponentName: comp.Name,
		Timestamp:     c.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method := comp.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, comp.URL, nil)
	if err != nil {
		result.Status = models.MajorOutage
		result.Error = errorf("invalid request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", "status-monitor/1.0")
	if comp.CheckType == models.CheckDeep {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Status = models.MajorOutage
		if isTimeout(err) {
			result.Error = errorf("timeout after %dms", result.LatencyMs)
		} else {
			result.Error = errorf("request failed: %v", err)
		}
		return result
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	result.HTTPStatus = &code

	if status, failed := ClassifyHTTPStatus(code); failed {
		result.Status = status
		result.Error = errorf("HTTP %d", code)
		return result
	}

	if comp.CheckType != models.CheckDeep {
		result.Status = ClassifyLatency(result.LatencyMs)
		if result.Status != models.Operational {
			result.Error = errorf("slow response: %dms", result.LatencyMs)
		}
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDeepBodyBytes+1))
	if err != nil {
		result.Status = models.Degraded
		result.Error = errorf("failed to read health response: %v", err)
		return result
	}
	if len(body) > maxDeepBodyBytes {
		result.Status = models.Degraded
		result.Error = errorf("health response too large: exceeds %d bytes", maxDeepBodyBytes)
		return result
	}

	status, diag := ClassifyDeepBody(body, result.LatencyMs)
	result.Status = status
	if diag != "" {
		result.Error = &diag
	}
	return result
}

// ClassifyLatency maps a latency onto a severity.
func ClassifyLatency(latencyMs int64) models.Status {
	switch {
	case latencyMs < LatencyDegradedMs:
		return models.Operational
	case latencyMs < LatencyPartialOutageMs:
		return models.Degraded
	default:
		return models.PartialOutage
	}
}

// ClassifyHTTPStatus reports whether code is a failure and, if so, its
// severity: 5xx is a major outage, any other non-2xx a partial outage.
func ClassifyHTTPStatus(code int) (models.Status, bool) {
	switch {
	case code >= 200 && code < 300:
		return models.Operational, false
	case code >= 500:
		return models.MajorOutage, true
	default:
		return models.PartialOutage, true
	}
}

type deepHealthBody struct {
	Status *string `json:"status"`
}

// ClassifyDeepBody interprets the self-reported status of a 2xx deep check.
// The second return value is a diagnostic message, empty when there is none.
func ClassifyDeepBody(body []byte, latencyMs int64) (models.Status, string) {
	var payload deepHealthBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Degraded, fmt.Sprintf("invalid health response: %v", err)
	}
	if payload.Status == nil {
		return models.Degraded, "health response missing status field"
	}

	switch strings.ToLower(*payload.Status) {
	case "unhealthy":
		return models.MajorOutage, "service reported unhealthy"
	case "degraded":
		return models.Degraded, "service reported degraded"
	case "maintenance":
		return models.Maintenance, ""
	}

	// Self-reported healthy: slowness alone is never confirmed downtime.
	status := ClassifyLatency(latencyMs)
	if status.WorseThan(models.Degraded) {
		status = models.Degraded
	}
	if status == models.Degraded {
		return status, fmt.Sprintf("slow response: %dms", latencyMs)
	}
	return status, ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func errorf(format string, args ...any) *string {
	s := fmt.Sprintf(format, args...)
	return &s
}
