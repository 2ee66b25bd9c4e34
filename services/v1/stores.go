package v1

import (
	"context"
	"time"

	"status-monitor/models"
)

// StateStore persists MonitorState in the fast per-component store.
type StateStore interface {
	// GetState returns the stored state and whether one existed.
	GetState(ctx context.Context, componentID string) (models.MonitorState, bool, error)
	// SaveState writes the state and refreshes its expiry.
	SaveState(ctx context.Context, componentID string, state models.MonitorState) error
}

// IncidentStore is the part of the system of record used by the state machine.
type IncidentStore interface {
	UpdateComponentStatus(ctx context.Context, componentID string, status models.Status) error
	// CreateIncident writes the incident, its component link and its first
	// update in a single transaction.
	CreateIncident(ctx context.Context, inc models.NewIncident) error
	// ResolveIncident marks an open incident resolved and reverts the
	// component status in a single transaction. It returns false when the
	// incident does not exist or was already resolved.
	ResolveIncident(ctx context.Context, incidentID, componentID, updateID string, at time.Time) (bool, error)
}

// HistoryStore is the part of the system of record used by the daily history projector.
type HistoryStore interface {
	GetDailyStatus(ctx context.Context, componentID, date string) (models.Status, bool, error)
	// InsertDailyStatus inserts a row with incident_count 0; it is a no-op
	// if a row already exists.
	InsertDailyStatus(ctx context.Context, componentID, date string, status models.Status) error
	SetDailyStatus(ctx context.Context, componentID, date string, status models.Status) error
	// IncidentsOverlapping returns incidents linked to componentID whose
	// [started_at, resolved_at) interval intersects [start, end).
	IncidentsOverlapping(ctx context.Context, componentID string, start, end time.Time) ([]models.Incident, error)
	// UpsertRollup writes incident_count unconditionally and status only
	// when the row is inserted.
	UpsertRollup(ctx context.Context, componentID, date string, status models.Status, incidentCount int) error
	PruneDailyHistory(ctx context.Context, before string) (int64, error)
}

// StatusReader serves the read-only status page queries.
type StatusReader interface {
	ListComponents(ctx context.Context) ([]models.ComponentStatusRecord, error)
	ListDailyHistory(ctx context.Context, since string) ([]models.DailyHistoryRecord, error)
}

// Alerter is the fire-and-forget notification side channel. Implementations
// must not block the caller.
type Alerter interface {
	IncidentOpened(component models.ComponentConfig, result models.HealthCheckResult)
	IncidentResolved(component models.ComponentConfig, result models.HealthCheckResult)
}

// Clock returns the current time; replaced in tests.
type Clock func() time.Time
