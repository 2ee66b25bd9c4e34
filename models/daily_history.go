package models

import "time"

// DateLayout is the layout of DailyHistoryRecord.Date.
const DateLayout = "2006-01-02"

// DailyHistoryRecord holds the worst status seen for a component on one UTC day.
type DailyHistoryRecord struct {
	ComponentID   string    `json:"componentId"`
	Date          string    `json:"date"`
	Status        Status    `json:"status"`
	IncidentCount int       `json:"incidentCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DayOf returns the UTC calendar day of t as a DateLayout string.
func DayOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DayBounds returns [start, end) of the UTC calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// DailyStatus is one day of the public uptime bar.
type DailyStatus struct {
	Date          string `json:"date"`
	Status        Status `json:"status"`
	IncidentCount int    `json:"incidentCount"`
}

// UptimeHistory is the uptime bar of one component.
type UptimeHistory struct {
	ComponentID      string        `json:"componentId"`
	ComponentName    string        `json:"componentName"`
	Days             []DailyStatus `json:"days"`
	UptimePercentage float64       `json:"uptimePercentage"`
}
