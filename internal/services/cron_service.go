package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/config"
)

// scheduleRecomputer is the part of the engine the cron jobs drive
type scheduleRecomputer interface {
	RecomputeActiveRoutes(ctx context.Context, date time.Time) (*RecomputeSummary, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	engine   scheduleRecomputer
	policy   config.SchedulingConfig
	logger   *logrus.Logger
	now      func() time.Time
	jobLimit time.Duration
}

// NewCronService creates a new CronService
func NewCronService(engine scheduleRecomputer, policy config.SchedulingConfig, logger *logrus.Logger) *CronService {
	return &CronService{
		// Seconds precision: "0 0 2 * * *" = 2:00 AM daily
		cron:     cron.New(cron.WithSeconds()),
		engine:   engine,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
		jobLimit: 30 * time.Minute,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service")

	_, err := s.cron.AddFunc(s.policy.RecomputeCron, s.recomputeSchedulesJob)
	if err != nil {
		return fmt.Errorf("failed to schedule recompute job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"spec":      s.policy.RecomputeCron,
		"lead_days": s.policy.RecomputeLeadDays,
	}).Info("Scheduled: recompute route schedules")

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// TargetDate is the service date the next recompute run prepares
func (s *CronService) TargetDate() time.Time {
	return s.now().AddDate(0, 0, s.policy.RecomputeLeadDays)
}

// recomputeSchedulesJob recomputes every active route for the target date
func (s *CronService) recomputeSchedulesJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobLimit)
	defer cancel()

	if _, err := s.RunRecomputeNow(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to recompute route schedules")
	}
}

// RunRecomputeNow runs the recompute job immediately and logs every route
// that failed
func (s *CronService) RunRecomputeNow(ctx context.Context) (*RecomputeSummary, error) {
	date := s.TargetDate()
	start := time.Now()

	summary, err := s.engine.RecomputeActiveRoutes(ctx, date)
	if err != nil {
		return nil, err
	}

	for routeID, routeErr := range summary.Failed {
		s.logger.WithFields(logrus.Fields{
			"route_id": routeID,
			"date":     date.Format("2006-01-02"),
			"code":     CodeOf(routeErr),
		}).WithError(routeErr).Warn("[CRON] Route schedule left unchanged")
	}

	s.logger.WithFields(logrus.Fields{
		"date":       date.Format("2006-01-02"),
		"recomputed": len(summary.Recomputed),
		"failed":     len(summary.Failed),
		"duration":   time.Since(start).String(),
	}).Info("[CRON] Recompute job finished")

	return summary, nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
