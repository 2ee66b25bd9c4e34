package v1

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic check cycle and the nightly rollup.
type Scheduler struct {
	cron     *cron.Cron
	checkJob cron.Job
	monitor  *Monitor
	history  *DailyHistory
	timeout  time.Duration
}

// NewScheduler registers both jobs. Schedules are evaluated in UTC, and a
// job that is still running when its next tick fires is skipped.
func NewScheduler(monitor *Monitor, history *DailyHistory, checkSpec, rollupSpec string, jobTimeout time.Duration) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.New(os.Stdout, "[CRON] ", log.LstdFlags))
	chain := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithLogger(logger)),
		monitor: monitor,
		history: history,
		timeout: jobTimeout,
	}
	// The startup run shares the wrapped job so it cannot overlap a tick.
	s.checkJob = chain.Then(cron.FuncJob(s.runChecks))

	if _, err := s.cron.AddJob(checkSpec, s.checkJob); err != nil {
		return nil, fmt.Errorf("invalid check schedule %q: %w", checkSpec, err)
	}
	if _, err := s.cron.AddJob(rollupSpec, chain.Then(cron.FuncJob(s.runRollup))); err != nil {
		return nil, fmt.Errorf("invalid rollup schedule %q: %w", rollupSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Println("[CRON] Starting scheduler...")
	s.cron.Start()
	go s.checkJob.Run() // first cycle right away
}

// Stop stops scheduling and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	log.Println("[CRON] Stopping scheduler...")
	return s.cron.Stop()
}

func (s *Scheduler) runChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.monitor.RunAllChecks(ctx); errors.Is(err, ErrRunInProgress) {
		log.Println("[CRON] Skipping check cycle, a manual run is in progress")
	} else if err != nil {
		log.Printf("[CRON] Check cycle finished with errors: %v", err)
	}
}

func (s *Scheduler) runRollup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.history.RunDailyRollup(ctx); err != nil {
		log.Printf("[CRON] Daily rollup finished with errors: %v", err)
	}
}
