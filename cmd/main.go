package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"status-monitor/api"
	"status-monitor/api/v1/health"
	"status-monitor/client"
	"status-monitor/config"
	v1 "status-monitor/services/v1"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	components, err := config.LoadRegistry(cfg.ComponentsFile)
	if err != nil {
		log.Fatalf("Failed to load component registry: %v", err)
	}
	log.Printf("Loaded %d components", len(components))

	db := client.ConnectPostgres()
	defer db.Close()
	if err := client.RunMigrations(db); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	store := v1.NewPostgresStore(db)
	if err := store.SyncComponents(context.Background(), components); err != nil {
		log.Fatalf("Failed to sync components: %v", err)
	}

	rdb := client.ConnectRedis()
	defer rdb.Close()

	alerts := v1.NewAlertDispatcher(v1.NewMailer(cfg))
	history := v1.NewDailyHistory(store, components, cfg.RetentionDays)
	manager := v1.NewIncidentManager(v1.NewRedisStateStore(rdb), store, history, alerts)
	monitor := v1.NewMonitor(components, v1.NewChecker(cfg.CheckTimeout), manager)

	// A cycle is bounded by the slowest check plus the sequential writes.
	scheduler, err := v1.NewScheduler(monitor, history, cfg.CheckSchedule, cfg.RollupSchedule, cfg.CheckTimeout+2*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()

	server := api.NewServer(cfg.Port, api.Deps{
		Checks:     monitor,
		Rollup:     history,
		Status:     v1.NewUptimeService(store),
		TriggerRPS: cfg.ManualTriggerRPS,
		Pings: map[string]health.PingFunc{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		log.Println("[CRON] Timed out waiting for running jobs")
	}
	alerts.Wait()

	log.Println("Server exited")
}
