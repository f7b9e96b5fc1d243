package scheduler

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// OutboxPoller claims due pending outbox rows and hands them to the asynq
// queue. Claiming flips rows to enqueued under FOR UPDATE SKIP LOCKED, so
// multiple poller instances never double-enqueue.
type OutboxPoller struct {
	client    *asynq.Client
	queue     string
	repo      *outbox.Repository
	interval  time.Duration
	batchSize int
	log       *logger.Logger
}

func NewOutboxPoller(cfg config.WorkerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxPoller, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	interval := cfg.GetOutboxPollInterval()
	if interval <= 0 {
		interval = 2 * time.Second
	}

	return &OutboxPoller{
		client:    asynq.NewClient(opt),
		queue:     queueName(cfg),
		repo:      outbox.New(pool),
		interval:  interval,
		batchSize: cfg.GetOutboxBatchSize(),
		log:       log,
	}, nil
}

func (p *OutboxPoller) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Run polls until the context is cancelled. Rows that fail to enqueue are
// flipped back to pending for the next tick.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := p.repo.ClaimPending(ctx, p.batchSize)
		if err != nil {
			p.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
				OutboxID: rec.ID.String(),
			})
			if err != nil {
				msg := err.Error()
				_ = p.repo.MarkPending(ctx, rec.ID, &msg)
				continue
			}

			_, err = p.client.EnqueueContext(ctx, task, asynq.ProcessAt(rec.RunAt), asynq.Queue(p.queue))
			if err != nil {
				msg := err.Error()
				_ = p.repo.MarkPending(ctx, rec.ID, &msg)
				continue
			}
		}
	}
}

func queueName(cfg config.RedisConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	return asynq.RedisClientOpt{
		Network:   opt.Network,
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
