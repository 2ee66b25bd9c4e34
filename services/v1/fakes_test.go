package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"status-monitor/models"
)

var errFake = errors.New("fake store failure")

type memStateStore struct {
	mu      sync.Mutex
	states  map[string]models.MonitorState
	getErr  error
	saveErr error
	saves   int
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]models.MonitorState)}
}

func (s *memStateStore) GetState(_ context.Context, id string) (models.MonitorState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.MonitorState{}, false, s.getErr
	}
	st, ok := s.states[id]
	return st, ok, nil
}

func (s *memStateStore) SaveState(_ context.Context, id string, st models.MonitorState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.states[id] = st
	return nil
}

func (s *memStateStore) get(id string) models.MonitorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

type fakeIncidentStore struct {
	mu            sync.Mutex
	statusWrites  []models.Status
	componentStat map[string]models.Status
	incidents     map[string]*models.Incident
	created       []models.NewIncident
	resolveCalls  int
	createErr     error
	resolveErr    error
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{
		componentStat: make(map[string]models.Status),
		incidents:     make(map[string]*models.Incident),
	}
}

func (f *fakeIncidentStore) UpdateComponentStatus(_ context.Context, id string, status models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusWrites = append(f.statusWrites, status)
	f.componentStat[id] = status
	return nil
}

func (f *fakeIncidentStore) CreateIncident(_ context.Context, inc models.NewIncident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, inc)
	f.incidents[inc.ID] = &models.Incident{
		ID:        inc.ID,
		Title:     inc.Title,
		Slug:      inc.Slug,
		Status:    models.IncidentInvestigating,
		Type:      inc.Type,
		Impact:    inc.Impact,
		StartedAt: inc.StartedAt,
	}
	return nil
}

func (f *fakeIncidentStore) ResolveIncident(_ context.Context, incidentID, componentID, _ string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.resolveErr != nil {
		return false, f.resolveErr
	}
	f.componentStat[componentID] = models.Operational
	inc, ok := f.incidents[incidentID]
	if !ok || inc.ResolvedAt != nil {
		return false, nil
	}
	inc.Status = models.IncidentResolved
	inc.ResolvedAt = &at
	return true, nil
}

func (f *fakeIncidentStore) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, inc := range f.incidents {
		if inc.ResolvedAt == nil {
			n++
		}
	}
	return n
}

type recordingAlerter struct {
	mu       sync.Mutex
	opened   []string
	resolved []string
}

func (a *recordingAlerter) IncidentOpened(comp models.ComponentConfig, _ models.HealthCheckResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opened = append(a.opened, comp.ID)
}

func (a *recordingAlerter) IncidentResolved(comp models.ComponentConfig, _ models.HealthCheckResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resolved = append(a.resolved, comp.ID)
}

type recordingHistory struct {
	mu       sync.Mutex
	recorded []models.Status
	err      error
}

func (h *recordingHistory) RecordIfWorse(_ context.Context, _ string, status models.Status) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorded = append(h.recorded, status)
	return h.err
}

type dailyKey struct {
	component string
	date      string
}

type dailyRow struct {
	status models.Status
	count  int
}

type fakeHistoryStore struct {
	rows       map[dailyKey]*dailyRow
	incidents  map[string][]models.Incident
	queried    [][2]time.Time
	prunedFrom string
	overlapErr map[string]error
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{
		rows:       make(map[dailyKey]*dailyRow),
		incidents:  make(map[string][]models.Incident),
		overlapErr: make(map[string]error),
	}
}

func (f *fakeHistoryStore) GetDailyStatus(_ context.Context, id, date string) (models.Status, bool, error) {
	row, ok := f.rows[dailyKey{id, date}]
	if !ok {
		return "", false, nil
	}
	return row.status, true, nil
}

func (f *fakeHistoryStore) InsertDailyStatus(_ context.Context, id, date string, status models.Status) error {
	k := dailyKey{id, date}
	if _, ok := f.rows[k]; !ok {
		f.rows[k] = &dailyRow{status: status}
	}
	return nil
}

func (f *fakeHistoryStore) SetDailyStatus(_ context.Context, id, date string, status models.Status) error {
	k := dailyKey{id, date}
	if row, ok := f.rows[k]; ok {
		row.status = status
		return nil
	}
	f.rows[k] = &dailyRow{status: status}
	return nil
}

func (f *fakeHistoryStore) IncidentsOverlapping(_ context.Context, id string, start, end time.Time) ([]models.Incident, error) {
	f.queried = append(f.queried, [2]time.Time{start, end})
	if err := f.overlapErr[id]; err != nil {
		return nil, err
	}
	var out []models.Incident
	for _, inc := range f.incidents[id] {
		if inc.StartedAt.Before(end) && (inc.ResolvedAt == nil || !inc.ResolvedAt.Before(start)) {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) UpsertRollup(_ context.Context, id, date string, status models.Status, count int) error {
	k := dailyKey{id, date}
	if row, ok := f.rows[k]; ok {
		row.count = count
		return nil
	}
	f.rows[k] = &dailyRow{status: status, count: count}
	return nil
}

func (f *fakeHistoryStore) PruneDailyHistory(_ context.Context, before string) (int64, error) {
	f.prunedFrom = before
	var n int64
	for k := range f.rows {
		if k.date < before {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
