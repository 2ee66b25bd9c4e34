package v1

import (
	"context"
	"fmt"
	"time"

	"status-monitor/models"
)

// DefaultHistoryDays is the length of the public uptime bar.
const DefaultHistoryDays = 90

// uptimeWeights is how much of a day counts as "up". Maintenance is not
// held against uptime.
var uptimeWeights = map[models.Status]float64{
	models.Operational:   1.0,
	models.Degraded:      0.75,
	models.PartialOutage: 0.25,
	models.MajorOutage:   0,
	models.Maintenance:   1.0,
}

// StatusSummary is the payload of the public status page.
type StatusSummary struct {
	Status     models.Status                  `json:"status"`
	Components []models.ComponentStatusRecord `json:"components"`
	History    []models.UptimeHistory         `json:"uptimeHistory"`
	UpdatedAt  time.Time                      `json:"updatedAt"`
}

// UptimeService serves the read side of the status page.
type UptimeService struct {
	reader StatusReader
	now    Clock
}

func NewUptimeService(reader StatusReader) *UptimeService {
	return &UptimeService{reader: reader, now: time.Now}
}

// History returns one entry per UTC day for the last `days` days, today
// included, for every component. Days without a row are operational.
func (u *UptimeService) History(ctx context.Context, days int) ([]models.UptimeHistory, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	components, err := u.reader.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return u.history(ctx, components, days)
}

func (u *UptimeService) history(ctx context.Context, components []models.ComponentStatusRecord, days int) ([]models.UptimeHistory, error) {
	start, _ := models.DayBounds(u.now())
	start = start.AddDate(0, 0, -(days - 1))

	records, err := u.reader.ListDailyHistory(ctx, models.DayOf(start))
	if err != nil {
		return nil, fmt.Errorf("list daily history: %w", err)
	}

	byComponent := make(map[string]map[string]models.DailyHistoryRecord)
	for _, r := range records {
		if byComponent[r.ComponentID] == nil {
			byComponent[r.ComponentID] = make(map[string]models.DailyHistoryRecord)
		}
		byComponent[r.ComponentID][r.Date] = r
	}

	histories := make([]models.UptimeHistory, 0, len(components))
	for _, c := range components {
		rows := byComponent[c.ID]
		h := models.UptimeHistory{
			ComponentID:   c.ID,
			ComponentName: c.Name,
			Days:          make([]models.DailyStatus, 0, days),
		}

		var sum float64
		for i := 0; i < days; i++ {
			date := models.DayOf(start.AddDate(0, 0, i))
			day := models.DailyStatus{Date: date, Status: models.Operational}
			if r, ok := rows[date]; ok {
				day.Status = r.Status
				day.IncidentCount = r.IncidentCount
			}
			h.Days = append(h.Days, day)

			w, ok := uptimeWeights[day.Status]
			if !ok {
				w = 1.0
			}
			sum += w
		}
		h.UptimePercentage = sum / float64(days) * 100
		histories = append(histories, h)
	}
	return histories, nil
}

// Summary builds the full status page payload.
func (u *UptimeService) Summary(ctx context.Context) (StatusSummary, error) {
	components, err := u.reader.ListComponents(ctx)
	if err != nil {
		return StatusSummary{}, fmt.Errorf("list components: %w", err)
	}
	history, err := u.history(ctx, components, DefaultHistoryDays)
	if err != nil {
		return StatusSummary{}, err
	}
	return StatusSummary{
		Status:     OverallStatus(components),
		Components: components,
		History:    history,
		UpdatedAt:  u.now().UTC(),
	}, nil
}

// OverallStatus is the worst current status across components. Maintenance
// only shows through when nothing is unhealthy.
func OverallStatus(components []models.ComponentStatusRecord) models.Status {
	statuses := make([]models.Status, len(components))
	for i, c := range components {
		statuses[i] = c.CurrentStatus
	}
	return models.Worst(statuses...)
}
