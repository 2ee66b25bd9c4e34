package v1

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"status-monitor/models"
)

// DefaultRetentionDays is how long daily history rows are kept.
const DefaultRetentionDays = 90

// DailyHistory maintains one worst-status row per (component, UTC day).
type DailyHistory struct {
	store      HistoryStore
	components []models.ComponentConfig
	retention  int
	now        Clock
}

func NewDailyHistory(store HistoryStore, components []models.ComponentConfig, retentionDays int) *DailyHistory {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &DailyHistory{
		store:      store,
		components: components,
		retention:  retentionDays,
		now:        time.Now,
	}
}

// RecordIfWorse upgrades today's row for the component; it never downgrades.
func (h *DailyHistory) RecordIfWorse(ctx context.Context, componentID string, status models.Status) error {
	if status == models.Operational {
		return nil
	}

	today := models.DayOf(h.now())
	existing, found, err := h.store.GetDailyStatus(ctx, componentID, today)
	if err != nil {
		return fmt.Errorf("read daily status: %w", err)
	}

	if !found {
		return h.store.InsertDailyStatus(ctx, componentID, today, status)
	}
	if status.WorseThan(existing) {
		return h.store.SetDailyStatus(ctx, componentID, today, status)
	}
	return nil
}

// RollupYesterday back-fills incident counts for the previous UTC day and
// provides a fallback status for components without a real-time write.
func (h *DailyHistory) RollupYesterday(ctx context.Context) error {
	start, end := models.DayBounds(h.now().UTC().AddDate(0, 0, -1))
	date := models.DayOf(start)

	var errs []error
	for _, comp := range h.components {
		incidents, err := h.store.IncidentsOverlapping(ctx, comp.ID, start, end)
		if err != nil {
			log.Printf("[HISTORY] Error loading incidents for %s on %s: %v", comp.ID, date, err)
			errs = append(errs, fmt.Errorf("rollup %s: %w", comp.ID, err))
			continue
		}

		worst := models.Operational
		for _, inc := range incidents {
			worst = models.Worst(worst, models.StatusForImpact(inc.Impact))
		}

		if err := h.store.UpsertRollup(ctx, comp.ID, date, worst, len(incidents)); err != nil {
			log.Printf("[HISTORY] Error writing rollup for %s on %s: %v", comp.ID, date, err)
			errs = append(errs, fmt.Errorf("rollup %s: %w", comp.ID, err))
			continue
		}
		log.Printf("[HISTORY] Rolled up %s on %s: %d incidents, fallback %s", comp.ID, date, len(incidents), worst)
	}
	return errors.Join(errs...)
}

// Prune deletes rows older than retentionDays before today.
func (h *DailyHistory) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := models.DayOf(h.now().UTC().AddDate(0, 0, -retentionDays))
	n, err := h.store.PruneDailyHistory(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune daily history: %w", err)
	}
	log.Printf("[HISTORY] Pruned %d rows older than %s", n, cutoff)
	return n, nil
}

// RunDailyRollup is the nightly job: rollup, then prune. Pruning runs even
// if the rollup failed for some components.
func (h *DailyHistory) RunDailyRollup(ctx context.Context) error {
	rollupErr := h.RollupYesterday(ctx)
	_, pruneErr := h.Prune(ctx, h.retention)
	return errors.Join(rollupErr, pruneErr)
}
