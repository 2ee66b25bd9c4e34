package v1

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"status-monitor/models"

	"golang.org/x/sync/errgroup"
)

// ComponentChecker checks one component and never fails.
type ComponentChecker interface {
	Check(ctx context.Context, comp models.ComponentConfig) models.HealthCheckResult
}

// ErrRunInProgress is returned when a check cycle is already running.
var ErrRunInProgress = errors.New("check cycle already in progress")

// Monitor runs one check cycle over the component registry. At most one
// cycle runs at a time, whether it was started by the scheduler or by hand.
type Monitor struct {
	components []models.ComponentConfig
	checker    ComponentChecker
	manager    *IncidentManager
	running    sync.Mutex
}

func NewMonitor(components []models.ComponentConfig, checker ComponentChecker, manager *IncidentManager) *Monitor {
	return &Monitor{
		components: components,
		checker:    checker,
		manager:    manager,
	}
}

// RunAllChecks checks every component concurrently, then feeds each result
// through the incident state machine one component at a time. The returned
// slice is in registry order. A component whose incident transition failed
// is reported through the joined error; the other components are unaffected.
// It returns ErrRunInProgress without probing when another cycle is running.
func (m *Monitor) RunAllChecks(ctx context.Context) ([]models.HealthCheckResult, error) {
	if !m.running.TryLock() {
		log.Println("[HEALTH] Check cycle already running, skipping")
		return nil, ErrRunInProgress
	}
	defer m.running.Unlock()

	start := time.Now()
	log.Printf("[HEALTH] Running checks for %d components", len(m.components))

	results := make([]models.HealthCheckResult, len(m.components))
	g, gctx := errgroup.WithContext(ctx)
	for i, comp := range m.components {
		i, comp := i, comp
		g.Go(func() error {
			results[i] = m.checker.Check(gctx, comp)
			return nil
		})
	}
	g.Wait()

	var errs []error
	for i, comp := range m.components {
		res := results[i]
		if err := m.manager.Process(ctx, comp, res); err != nil {
			errs = append(errs, err)
		}
		log.Printf("[HEALTH] %s: %s (%dms)", comp.ID, res.Status, res.LatencyMs)
	}

	log.Printf("[HEALTH] Check cycle completed in %s", time.Since(start).Round(time.Millisecond))
	return results, errors.Join(errs...)
}
