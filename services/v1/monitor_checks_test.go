package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"status-monitor/models"
)

func TestRunAllChecks(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	comps := []models.ComponentConfig{
		{ID: "svc-a", Name: "A", URL: healthy.URL, CheckType: models.CheckDeep, Method: "GET"},
		{ID: "svc-b", Name: "B", URL: broken.URL, CheckType: models.CheckShallow, Method: "GET"},
	}

	f := newManagerFixture()
	mon := NewMonitor(comps, newTestChecker(2*time.Second), f.manager)

	for i := 0; i < 3; i++ {
		results, err := mon.RunAllChecks(context.Background())
		if err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if len(results) != 2 || results[0].ComponentID != "svc-a" || results[1].ComponentID != "svc-b" {
			t.Fatalf("results out of order: %+v", results)
		}
		if results[0].Status != models.Operational || results[1].Status != models.MajorOutage {
			t.Fatalf("statuses = %s, %s", results[0].Status, results[1].Status)
		}
	}

	if len(f.incidents.created) != 1 || f.incidents.created[0].ComponentID != "svc-b" {
		t.Errorf("created = %+v", f.incidents.created)
	}
	if f.incidents.componentStat["svc-b"] != models.MajorOutage {
		t.Errorf("svc-b status = %s", f.incidents.componentStat["svc-b"])
	}
	if _, ok := f.incidents.componentStat["svc-a"]; ok {
		t.Errorf("healthy component status was written")
	}
}

type slowChecker struct {
	inFlight, peak atomic.Int32
}

func (p *slowChecker) Check(ctx context.Context, comp models.ComponentConfig) models.HealthCheckResult {
	n := p.inFlight.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(50 * time.Millisecond)
	p.inFlight.Add(-1)
	return models.HealthCheckResult{ComponentID: comp.ID, Status: models.Operational, Timestamp: testNow}
}

func TestRunAllChecks_ChecksConcurrently(t *testing.T) {
	comps := []models.ComponentConfig{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	p := &slowChecker{}
	f := newManagerFixture()

	if _, err := NewMonitor(comps, p, f.manager).RunAllChecks(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.peak.Load() < 2 {
		t.Errorf("checks ran sequentially (peak %d)", p.peak.Load())
	}
}

type staticChecker map[string]models.Status

func (p staticChecker) Check(_ context.Context, comp models.ComponentConfig) models.HealthCheckResult {
	return models.HealthCheckResult{ComponentID: comp.ID, Status: p[comp.ID], Timestamp: testNow}
}

func TestRunAllChecks_IncidentErrorDoesNotStopOthers(t *testing.T) {
	comps := []models.ComponentConfig{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	checker := staticChecker{"a": models.MajorOutage, "b": models.Degraded}
	f := newManagerFixture()
	f.incidents.createErr = errFake
	mon := NewMonitor(comps, checker, f.manager)

	var err error
	for i := 0; i < 3; i++ {
		_, err = mon.RunAllChecks(context.Background())
	}
	if !errors.Is(err, errFake) {
		t.Fatalf("expected joined create error, got %v", err)
	}
	if f.states.get("a").ConsecutiveFailures != 3 || f.states.get("b").ConsecutiveFailures != 3 {
		t.Errorf("state not advanced for every component")
	}
}

type blockingChecker struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingChecker) Check(_ context.Context, comp models.ComponentConfig) models.HealthCheckResult {
	p.entered <- struct{}{}
	<-p.release
	return models.HealthCheckResult{ComponentID: comp.ID, Status: models.MajorOutage, Timestamp: testNow}
}

func TestRunAllChecks_RejectsConcurrentRun(t *testing.T) {
	p := &blockingChecker{entered: make(chan struct{}, 1), release: make(chan struct{})}
	f := newManagerFixture()
	mon := NewMonitor([]models.ComponentConfig{{ID: "svc-a", Name: "A"}}, p, f.manager)

	done := make(chan error, 1)
	go func() {
		_, err := mon.RunAllChecks(context.Background())
		done <- err
	}()
	<-p.entered

	results, err := mon.RunAllChecks(context.Background())
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("second run err = %v, want ErrRunInProgress", err)
	}
	if results != nil {
		t.Errorf("second run returned results: %+v", results)
	}

	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := f.states.get("svc-a").ConsecutiveFailures; got != 1 {
		t.Errorf("failures = %d, want 1 (only one cycle processed)", got)
	}

	// the lock is released once the cycle finishes
	if _, err := mon.RunAllChecks(context.Background()); err != nil {
		t.Errorf("run after release: %v", err)
	}
}
