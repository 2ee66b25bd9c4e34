package models

import "time"

// Debounce and incident thresholds.
const (
	// ChecksToDegrade is the number of consecutive unhealthy checks before
	// the public component status is updated.
	ChecksToDegrade = 2
	// FailuresToCreate is the number of consecutive unhealthy checks before
	// an incident is opened.
	FailuresToCreate = 3
	// SuccessesToResolve is the number of consecutive healthy checks before
	// an open incident is resolved.
	SuccessesToResolve = 2
)

// MonitorState is the per-component record kept in the fast store.
// At most one of ConsecutiveFailures / ConsecutiveSuccesses is nonzero.
type MonitorState struct {
	ConsecutiveFailures  int       `json:"consecutiveFailures"`
	ConsecutiveSuccesses int       `json:"consecutiveSuccesses"`
	ActiveIncidentID     *string   `json:"activeIncidentId"`
	LastStatus           Status    `json:"lastStatus"`
	LastCheckAt          time.Time `json:"lastCheckAt"`
}

// NewMonitorState returns the state used for a component seen for the first time.
func NewMonitorState(now time.Time) MonitorState {
	return MonitorState{
		LastStatus:  Operational,
		LastCheckAt: now.UTC(),
	}
}

func (s MonitorState) HasActiveIncident() bool {
	return s.ActiveIncidentID != nil && *s.ActiveIncidentID != ""
}

// StateKind is the coarse state derived from the counters.
type StateKind string

const (
	StateOperational StateKind = "operational"
	StateUnhealthy   StateKind = "unhealthy"
	StateMaintenance StateKind = "maintenance"
)

// EffectiveState is the derived view of a MonitorState. Failures is only
// meaningful for StateUnhealthy.
type EffectiveState struct {
	Kind     StateKind
	Failures int
}

// DeriveEffectiveState maps the counter representation onto
// {Operational, Unhealthy(n), Maintenance}.
func DeriveEffectiveState(s MonitorState) EffectiveState {
	switch {
	case s.LastStatus == Maintenance:
		return EffectiveState{Kind: StateMaintenance}
	case s.ConsecutiveFailures > 0:
		return EffectiveState{Kind: StateUnhealthy, Failures: s.ConsecutiveFailures}
	default:
		return EffectiveState{Kind: StateOperational}
	}
}

// StatusPublished reports whether the debounce threshold has been reached,
// i.e. the unhealthy severity has been written to the public status.
func (e EffectiveState) StatusPublished() bool {
	return e.Kind == StateUnhealthy && e.Failures >= ChecksToDegrade
}

// ShouldOpenIncident reports whether enough consecutive failures have been
// seen to open an incident.
func (e EffectiveState) ShouldOpenIncident() bool {
	return e.Kind == StateUnhealthy && e.Failures >= FailuresToCreate
}
