package v1

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"status-monitor/models"

	"github.com/google/uuid"
)

// HistoryRecorder is the real-time daily history hook.
type HistoryRecorder interface {
	RecordIfWorse(ctx context.Context, componentID string, status models.Status) error
}

// IncidentManager turns a stream of health check results into debounced
// status changes and incident open/resolve transitions.
type IncidentManager struct {
	states    StateStore
	incidents IncidentStore
	history   HistoryRecorder
	alerts    Alerter
	now       Clock
	newID     func() string
}

func NewIncidentManager(states StateStore, incidents IncidentStore, history HistoryRecorder, alerts Alerter) *IncidentManager {
	return &IncidentManager{
		states:    states,
		incidents: incidents,
		history:   history,
		alerts:    alerts,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Process applies one result to the component's MonitorState. Only a failed
// incident create/resolve is returned; the state is saved even then so the
// counters keep advancing. When the stored state could not be read, the check
// runs on a fresh in-memory state and nothing is saved, so an unreadable
// record is never overwritten.
func (m *IncidentManager) Process(ctx context.Context, comp models.ComponentConfig, result models.HealthCheckResult) error {
	state, readOK := m.loadState(ctx, comp)

	var incidentErr error
	switch {
	case result.Status == models.Maintenance:
		m.setComponentStatus(ctx, comp, models.Maintenance)

	case result.Status.IsUnhealthy():
		afterMaintenance := state.LastStatus == models.Maintenance
		state.ConsecutiveSuccesses = 0
		state.ConsecutiveFailures++
		state.LastStatus = result.Status

		// Maintenance replaced the public status, so a still-running outage
		// has to be republished once it ends.
		if state.ConsecutiveFailures == models.ChecksToDegrade ||
			(afterMaintenance && state.ConsecutiveFailures > models.ChecksToDegrade) {
			m.setComponentStatus(ctx, comp, result.Status)
		}

		if models.DeriveEffectiveState(state).ShouldOpenIncident() && !state.HasActiveIncident() {
			id, err := m.openIncident(ctx, comp, result, state.ConsecutiveFailures)
			if err != nil {
				incidentErr = err
			} else {
				state.ActiveIncidentID = &id
			}
		}

	default:
		wasDown := state.LastStatus != models.Operational
		state.ConsecutiveFailures = 0
		state.ConsecutiveSuccesses++

		if state.ConsecutiveSuccesses == 1 && wasDown {
			m.setComponentStatus(ctx, comp, models.Operational)
		}

		if state.ConsecutiveSuccesses >= models.SuccessesToResolve && state.HasActiveIncident() {
			if err := m.resolveIncident(ctx, comp, result, *state.ActiveIncidentID); err != nil {
				incidentErr = err
			} else {
				state.ActiveIncidentID = nil
			}
		}
	}

	state.LastStatus = result.Status
	state.LastCheckAt = result.Timestamp
	if readOK {
		if err := m.states.SaveState(ctx, comp.ID, state); err != nil {
			log.Printf("[REDIS] Error saving state for %s: %v", comp.ID, err)
		}
	}

	if m.history != nil {
		if err := m.history.RecordIfWorse(ctx, comp.ID, result.Status); err != nil {
			log.Printf("[HISTORY] Error recording daily status for %s: %v", comp.ID, err)
		}
	}

	return incidentErr
}

// loadState returns the stored state, or a fresh one for a new component.
// The bool is false when the store could not be read.
func (m *IncidentManager) loadState(ctx context.Context, comp models.ComponentConfig) (models.MonitorState, bool) {
	state, found, err := m.states.GetState(ctx, comp.ID)
	if err != nil {
		log.Printf("[REDIS] Error loading state for %s, skipping state update: %v", comp.ID, err)
		return models.NewMonitorState(m.now()), false
	}
	if !found {
		return models.NewMonitorState(m.now()), true
	}
	if state.LastStatus == "" {
		state.LastStatus = models.Operational
	}
	return state, true
}

func (m *IncidentManager) setComponentStatus(ctx context.Context, comp models.ComponentConfig, status models.Status) {
	if err := m.incidents.UpdateComponentStatus(ctx, comp.ID, status); err != nil {
		log.Printf("[INCIDENT] Error updating component status for %s to %s: %v", comp.ID, status, err)
		return
	}
	log.Printf("[INCIDENT] Component %s status set to %s", comp.ID, status)
}

func (m *IncidentManager) openIncident(ctx context.Context, comp models.ComponentConfig, result models.HealthCheckResult, failures int) (string, error) {
	incidentType, title := models.IncidentDetails(result.Status)
	now := m.now().UTC()
	fullTitle := fmt.Sprintf("%s - %s", comp.Name, title)

	message := fmt.Sprintf("Automated monitoring detected %s. Investigating.", humanStatus(result.Status))
	if result.Error != nil {
		message = fmt.Sprintf("Automated monitoring detected an issue: %s", *result.Error)
	}

	inc := models.NewIncident{
		ID:            m.newID(),
		ComponentID:   comp.ID,
		Title:         fullTitle,
		Slug:          Slug(fullTitle, now),
		Type:          incidentType,
		Impact:        models.ImpactForStatus(result.Status),
		UpdateID:      m.newID(),
		UpdateMessage: message,
		StartedAt:     now,
	}
	if err := m.incidents.CreateIncident(ctx, inc); err != nil {
		log.Printf("[INCIDENT] Error creating incident for %s: %v", comp.ID, err)
		return "", fmt.Errorf("create incident for %s: %w", comp.ID, err)
	}

	log.Printf("[INCIDENT] Created incident %s for %s after %d failures", inc.ID, comp.ID, failures)
	if m.alerts != nil {
		m.alerts.IncidentOpened(comp, result)
	}
	return inc.ID, nil
}

func (m *IncidentManager) resolveIncident(ctx context.Context, comp models.ComponentConfig, result models.HealthCheckResult, incidentID string) error {
	resolved, err := m.incidents.ResolveIncident(ctx, incidentID, comp.ID, m.newID(), m.now().UTC())
	if err != nil {
		log.Printf("[INCIDENT] Error resolving incident %s for %s: %v", incidentID, comp.ID, err)
		return fmt.Errorf("resolve incident %s for %s: %w", incidentID, comp.ID, err)
	}

	if !resolved {
		log.Printf("[INCIDENT] Incident %s not found or already resolved, clearing", incidentID)
		return nil
	}

	log.Printf("[INCIDENT] Resolved incident %s for %s", incidentID, comp.ID)
	if m.alerts != nil {
		m.alerts.IncidentResolved(comp, result)
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug builds a URL-friendly incident slug prefixed with the UTC date.
func Slug(title string, at time.Time) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return fmt.Sprintf("%s-%s", models.DayOf(at), s)
}

func humanStatus(s models.Status) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
