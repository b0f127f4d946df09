package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smarttransit/schoolbus-scheduler/internal/config"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/internal/logger"
	"github.com/smarttransit/schoolbus-scheduler/internal/services"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run wires the scheduler and returns the process exit code: 1 on startup
// failure, 2 when a one-shot recompute left routes failed
func run(args []string) int {
	flags := flag.NewFlagSet("scheduler", flag.ContinueOnError)
	recomputeOnce := flags.Bool("recompute-now", false, "run the schedule recompute once and exit")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// The logger is configured from cfg, so fall back to the defaults here
		logger.New(config.ServerConfig{LogLevel: "info"}).Errorf("Failed to load configuration: %v", err)
		return 1
	}

	log := logger.New(cfg.Server)
	log.Info("Starting school bus scheduler")
	log.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		return 1
	}
	store := database.NewPostgresStore(db, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Failed to close database connection")
		}
	}()
	log.Info("Database connection established")

	engine := services.NewConsistencyEngine(store, cfg.Scheduling, log)
	cronService := services.NewCronService(engine, cfg.Scheduling, log)

	if *recomputeOnce {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		summary, err := cronService.RunRecomputeNow(ctx)
		if err != nil {
			log.Errorf("Recompute failed: %v", err)
			return 1
		}
		if len(summary.Failed) > 0 {
			return 2
		}
		return 0
	}

	if err := cronService.Start(); err != nil {
		log.Errorf("Failed to start cron service: %v", err)
		return 1
	}
	log.Info("✓ Cron service started - nightly schedule recompute enabled")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")
	cronService.Stop()
	log.Info("Scheduler exited")
	return 0
}
