package models

import "time"

// Impact of an incident.
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// Incident lifecycle status as stored in status_incidents.status.
const (
	IncidentInvestigating = "investigating"
	IncidentResolved      = "resolved"
)

// Incident is a durable record of a sustained outage or degradation.
type Incident struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Status     string     `json:"status"`
	Type       string     `json:"type"`
	Impact     Impact     `json:"impact"`
	StartedAt  time.Time  `json:"startedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// NewIncident carries everything needed to open an incident in one transaction.
type NewIncident struct {
	ID            string
	ComponentID   string
	Title         string
	Slug          string
	Type          string
	Impact        Impact
	UpdateID      string
	UpdateMessage string
	StartedAt     time.Time
}

// ImpactForStatus maps a severity onto an incident impact.
func ImpactForStatus(s Status) Impact {
	switch s {
	case MajorOutage:
		return ImpactCritical
	case PartialOutage:
		return ImpactMajor
	default:
		return ImpactMinor
	}
}

// StatusForImpact is the inverse of ImpactForStatus.
func StatusForImpact(i Impact) Status {
	switch i {
	case ImpactCritical:
		return MajorOutage
	case ImpactMajor:
		return PartialOutage
	case ImpactMinor:
		return Degraded
	default:
		return Operational
	}
}

// IncidentDetails returns the incident type and title for a severity.
func IncidentDetails(s Status) (incidentType string, title string) {
	switch s {
	case MajorOutage:
		return "outage", "Major Outage"
	case PartialOutage:
		return "outage", "Partial Outage"
	case Degraded:
		return "degraded", "Degraded Performance"
	default:
		return "degraded", "Performance Issue"
	}
}
