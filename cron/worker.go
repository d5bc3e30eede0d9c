package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadline/config"
	"leadline/models"
	"leadline/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// JobSource hands out pending call jobs and records launch failures.
type JobSource interface {
	Claim(ctx context.Context) ([]models.Job, error)
	MarkFailed(ctx context.Context, job models.Job) error
}

// CallLauncher places one outbound call.
type CallLauncher interface {
	Dispatch(ctx context.Context, job models.Job) (string, error)
}

// Enqueuer is the part of asynq.Client used by the poll handler.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Worker bundles the asynq server, scheduler and client for dispatching.
type Worker struct {
	Server    *asynq.Server
	Scheduler *asynq.Scheduler
	Client    *asynq.Client
	logger    *zap.Logger
	cancel    context.CancelFunc
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitDispatchWorker runs the dispatch worker and the periodic sheet poll in
// the background.
func InitDispatchWorker(source JobSource, launcher CallLauncher, logger *zap.Logger) (*Worker, error) {
	opts := redisOpt()
	client := asynq.NewClient(opts)

	srv := asynq.NewServer(
		opts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSheetPoll, HandleSheetPoll(source, client, logger))
	mux.HandleFunc(tasks.TypeCallDispatch, HandleCallDispatch(source, launcher, logger))

	scheduler := asynq.NewScheduler(opts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(config.AppConfig.SheetPollSchedule, tasks.NewSheetPollTask(), asynq.Unique(time.Minute)); err != nil {
		client.Close()
		return nil, fmt.Errorf("register sheet poll: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{Server: srv, Scheduler: scheduler, Client: client, logger: logger, cancel: cancel}

	go monitorRedisConnection(ctx, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting dispatch worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Dispatch worker failed to start",
				zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Dispatch worker gave up")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("Sheet poll scheduler stopped", zap.Error(err))
		}
	}()

	return w, nil
}

// Shutdown stops the scheduler and drains the worker.
func (w *Worker) Shutdown() {
	w.cancel()
	w.Scheduler.Shutdown()
	w.Server.Shutdown()
	if err := w.Client.Close(); err != nil {
		w.logger.Warn("Closing task client", zap.Error(err))
	}
}

// HandleSheetPoll claims pending leads and enqueues one dispatch task each.
func HandleSheetPoll(source JobSource, queue Enqueuer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		jobs, err := source.Claim(ctx)
		if err != nil {
			logger.Error("Lead sheet poll failed", zap.Error(err))
			return err
		}
		for _, job := range jobs {
			task, opts, err := tasks.NewCallDispatchTask(job)
			if err != nil {
				logger.Error("Could not build dispatch task", zap.String("row_id", job.RowID), zap.Error(err))
				continue
			}
			if _, err := queue.Enqueue(task, opts...); err != nil {
				if errors.Is(err, asynq.ErrDuplicateTask) {
					logger.Debug("Dispatch already queued", zap.String("row_id", job.RowID))
					continue
				}
				logger.Error("Could not enqueue dispatch", zap.String("row_id", job.RowID), zap.Error(err))
				if mErr := source.MarkFailed(ctx, job); mErr != nil {
					logger.Warn("Could not mark lead failed", zap.String("row_id", job.RowID), zap.Error(mErr))
				}
			}
		}
		return nil
	}
}

// HandleCallDispatch launches the call carried by the task. A launch failure
// marks the lead as failed; there is no retry.
func HandleCallDispatch(source JobSource, launcher CallLauncher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		job, err := tasks.ParseCallDispatchTask(task)
		if err != nil {
			logger.Error("Invalid dispatch payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		id, err := launcher.Dispatch(ctx, job)
		if err != nil {
			logger.Error("Call dispatch failed",
				zap.String("phone_number", job.PhoneNumber),
				zap.String("row_id", job.RowID),
				zap.Error(err))
			if mErr := source.MarkFailed(ctx, job); mErr != nil {
				logger.Warn("Could not mark lead failed", zap.String("row_id", job.RowID), zap.Error(mErr))
			}
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Debug("Dispatch task done", zap.String("job_id", id))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	opt := redisOpt()
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Task queue redis unreachable", zap.Error(err))
			}
		}
	}
}
