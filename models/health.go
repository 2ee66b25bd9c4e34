package models

import "time"

// Status representa a severidade de um componente.
type Status string

/*
Severity ordering used for worst-of-day comparisons:

	operational < maintenance < degraded < partial_outage < major_outage

Degraded, PartialOutage and MajorOutage are "unhealthy": they share the same
debounce and incident thresholds regardless of which one was observed.
Maintenance never opens or closes an incident.
*/

const (
	Operational   Status = "operational"    // Service is working normally.
	Degraded      Status = "degraded"       // Reachable but slow or self-reporting degraded.
	PartialOutage Status = "partial_outage" // Non-5xx error or very slow response.
	MajorOutage   Status = "major_outage"   // 5xx, timeout, transport error or self-reported unhealthy.
	Maintenance   Status = "maintenance"    // Declared maintenance window.
)

var statusRank = map[Status]int{
	Operational:   0,
	Maintenance:   1,
	Degraded:      2,
	PartialOutage: 3,
	MajorOutage:   4,
}

// Rank returns the position of s in the severity ordering. Unknown values
// rank as operational.
func (s Status) Rank() int {
	return statusRank[s]
}

// WorseThan reports whether s is strictly more severe than other.
func (s Status) WorseThan(other Status) bool {
	return s.Rank() > other.Rank()
}

func (s Status) IsUnhealthy() bool {
	return s == Degraded || s == PartialOutage || s == MajorOutage
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Worst returns the most severe of the given statuses, or Operational when
// none are given.
func Worst(statuses ...Status) Status {
	worst := Operational
	for _, s := range statuses {
		if s.WorseThan(worst) {
			worst = s
		}
	}
	return worst
}

// HealthCheckResult is the verdict of a single check.
type HealthCheckResult struct {
	ComponentID   string    `json:"componentId"`
	ComponentName string    `json:"componentName"`
	Status        Status    `json:"status"`
	LatencyMs     int64     `json:"latencyMs"`
	HTTPStatus    *int      `json:"httpStatus"`
	Error         *string   `json:"error"`
	Timestamp     time.Time `json:"timestamp"`
}
