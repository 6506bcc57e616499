// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	businessflow "github.com/emalab/pingflow/business_flow"
	"github.com/emalab/pingflow/config"
	"github.com/emalab/pingflow/models"
	"github.com/emalab/pingflow/repository"
	"github.com/emalab/pingflow/utils"
)

// dailySweepJobName keys the checkpoint rows of the materialization sweep
const dailySweepJobName = "daily_materialization_sweep"

var (
	pingsMaterializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pings_materialized_total",
		Help: "Total number of pings created by materialization sweeps.",
	})
	pingsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pings_sent_total",
		Help: "Total number of pings dispatched to Telegram.",
	})
	pingSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ping_send_failures_total",
		Help: "Total number of ping dispatch failures.",
	})
	remindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Total number of reminders dispatched to Telegram.",
	})
	reminderSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_send_failures_total",
		Help: "Total number of reminder dispatch failures.",
	})
)

// PingScheduler drives the three background jobs of the engine: the daily
// materialization sweep, the due-ping dispatch tick and the reminder tick.
// Every job is safe to run on several instances at once; the redis locks only
// trim wasted work, the real guarantees come from the unique ping constraint
// and the conditional sent/reminded transitions.
type PingScheduler struct {
	materializeFlow businessflow.MaterializeFlow
	deliveryFlow    businessflow.PingDeliveryFlow
	runRepo         repository.ScheduleRunRepository
	rc              *redis.Client
	logger          *log.Logger
	cron            *cron.Cron

	cfg      config.SchedulerConfig
	cacheCfg config.CacheConfig
}

func NewPingScheduler(
	materializeFlow businessflow.MaterializeFlow,
	deliveryFlow businessflow.PingDeliveryFlow,
	runRepo repository.ScheduleRunRepository,
	rc *redis.Client,
	cfg config.SchedulerConfig,
	cacheCfg config.CacheConfig,
	logCfg config.LoggingConfig,
) *PingScheduler {
	s := &PingScheduler{
		materializeFlow: materializeFlow,
		deliveryFlow:    deliveryFlow,
		runRepo:         runRepo,
		rc:              rc,
		cfg:             cfg,
		cacheCfg:        cacheCfg,
	}
	s.initSchedulerLogger(logCfg)
	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a rotating file
func (s *PingScheduler) initSchedulerLogger(logCfg config.LoggingConfig) {
	logPath := s.cfg.LogPath
	if logPath == "" {
		logPath = filepath.Join("data", "scheduler.log")
	}
	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logCfg.MaxSize,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAge,
		Compress:   logCfg.Compress,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
	s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler jobs in background goroutines and returns a stop function
func (s *PingScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	sweepSpec := s.cfg.DailySweepSpec
	if sweepSpec == "" {
		sweepSpec = "0 2 * * *"
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(sweepSpec, func() { s.runDailySweep(ctx) }); err != nil {
		s.logger.Printf("scheduler: invalid sweep spec %q: %v", sweepSpec, err)
	}
	s.cron.Start()
	s.logger.Printf("scheduler: daily sweep scheduled with spec %q", sweepSpec)

	go s.runDispatchLoop(ctx)
	go s.runReminderLoop(ctx)

	// Catch up on a sweep the previous run may have missed or left failed
	go s.runDailySweep(ctx)

	return func() {
		cancel()
		stopped := s.cron.Stop()
		<-stopped.Done()
	}
}

// runDailySweep materializes pings for every active enrollment once per UTC
// calendar day. The checkpoint row makes reruns after a crash or restart
// no-ops once a day has succeeded.
func (s *PingScheduler) runDailySweep(ctx context.Context) {
	today := utils.DateOnly(utils.UTCNow())

	existing, err := s.runRepo.ByJobAndDate(ctx, dailySweepJobName, today)
	if err != nil {
		s.logger.Printf("scheduler: sweep checkpoint lookup failed: %v", err)
		return
	}
	if existing != nil && existing.Status == models.ScheduleRunStatusSucceeded {
		return
	}

	if !s.acquireLock(ctx, utils.DailySweepLockKey) {
		return
	}
	defer s.releaseLock(ctx, utils.DailySweepLockKey)

	run := existing
	if run == nil {
		run = &models.ScheduleRun{
			JobName:   dailySweepJobName,
			RunDate:   today,
			RunID:     uuid.NewString(),
			Status:    models.ScheduleRunStatusRunning,
			StartedAt: utils.UTCNow(),
		}
		if err := s.runRepo.Save(ctx, run); err != nil {
			s.logger.Printf("scheduler: sweep checkpoint create failed: %v", err)
			return
		}
	}
	s.logger.Printf("scheduler: daily sweep run=%s started", run.RunID)

	created, err := s.materializeFlow.MaterializeActive(ctx)
	pingsMaterializedTotal.Add(float64(created))

	now := utils.UTCNow()
	run.PingsCreated = created
	run.FinishedAt = &now
	if err != nil {
		msg := err.Error()
		run.Status = models.ScheduleRunStatusFailed
		run.Error = &msg
		s.logger.Printf("scheduler: daily sweep run=%s failed after %d pings: %v", run.RunID, created, err)
	} else {
		run.Status = models.ScheduleRunStatusSucceeded
		run.Error = nil
		s.logger.Printf("scheduler: daily sweep run=%s created %d pings", run.RunID, created)
	}
	if err := s.runRepo.Update(ctx, *run); err != nil {
		s.logger.Printf("scheduler: sweep checkpoint update failed: %v", err)
	}
}

// runDispatchLoop ticks the due-ping dispatch at the configured interval
func (s *PingScheduler) runDispatchLoop(ctx context.Context) {
	interval := s.cfg.DispatchInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.dispatchTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchTick(ctx)
		}
	}
}

func (s *PingScheduler) dispatchTick(ctx context.Context) {
	if !s.acquireLock(ctx, utils.SendTickLockKey) {
		return
	}
	defer s.releaseLock(ctx, utils.SendTickLockKey)

	sent, failed, err := s.deliveryFlow.DispatchDuePings(ctx)
	pingsSentTotal.Add(float64(sent))
	pingSendFailuresTotal.Add(float64(failed))
	if err != nil {
		s.logger.Printf("scheduler: dispatch tick failed: %v", err)
		return
	}
	if sent > 0 || failed > 0 {
		s.logger.Printf("scheduler: dispatched %d pings, %d failures", sent, failed)
	}
}

// runReminderLoop ticks the reminder dispatch at the configured interval
func (s *PingScheduler) runReminderLoop(ctx context.Context) {
	interval := s.cfg.ReminderInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.reminderTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reminderTick(ctx)
		}
	}
}

func (s *PingScheduler) reminderTick(ctx context.Context) {
	if !s.acquireLock(ctx, utils.ReminderTickLockKey) {
		return
	}
	defer s.releaseLock(ctx, utils.ReminderTickLockKey)

	sent, failed, err := s.deliveryFlow.DispatchDueReminders(ctx)
	remindersSentTotal.Add(float64(sent))
	reminderSendFailuresTotal.Add(float64(failed))
	if err != nil {
		s.logger.Printf("scheduler: reminder tick failed: %v", err)
		return
	}
	if sent > 0 || failed > 0 {
		s.logger.Printf("scheduler: dispatched %d reminders, %d failures", sent, failed)
	}
}

// acquireLock takes the named tick lock. A cache outage does not stop
// delivery; the conditional transitions keep duplicate dispatch harmless, so
// the scheduler proceeds without the lock and logs the degradation.
func (s *PingScheduler) acquireLock(ctx context.Context, key string) bool {
	if s.rc == nil {
		return true
	}
	ttl := s.cfg.LockTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := s.rc.SetNX(ctx, s.cacheCfg.RedisPrefix+key, "1", ttl).Result()
	if err != nil {
		s.logger.Printf("scheduler: lock %s unavailable, proceeding without it: %v", key, err)
		return true
	}
	return ok
}

func (s *PingScheduler) releaseLock(ctx context.Context, key string) {
	if s.rc == nil {
		return
	}
	_ = s.rc.Del(ctx, s.cacheCfg.RedisPrefix+key).Err()
}
