package scheduler

import (
	"context"
	"errors"

	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes outbox tasks and drives the notification dispatcher.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	repo       *outbox.Repository
	dispatcher *notification.Dispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.WorkerConfig, pool *pgxpool.Pool, dispatcher *notification.Dispatcher, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:     server,
		mux:        asynq.NewServeMux(),
		repo:       outbox.New(pool),
		dispatcher: dispatcher,
		log:        log,
	}
	w.mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

// handleNotificationOutboxDue delivers one outbox row. The dispatcher owns
// the retry/backoff loop, so a delivery failure here is final: the row is
// marked failed for manual follow-up and the task is not retried by asynq.
func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	rec, err := w.repo.GetByID(ctx, outboxID)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded {
		return nil
	}

	if err := w.repo.MarkProcessing(ctx, outboxID); err != nil {
		return err
	}

	if err := w.dispatcher.Send(ctx, rec.Kind, rec.TargetEmail, rec.Payload); err != nil {
		if markErr := w.repo.MarkFailed(ctx, outboxID, err.Error()); markErr != nil {
			w.log.Error("failed to mark outbox row failed", "error", markErr, "outboxId", outboxID)
		}
		if errors.Is(err, notification.ErrDeliveryFailed) {
			return nil
		}
		return err
	}

	return w.repo.MarkSucceeded(ctx, outboxID)
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("notification worker stopped", "error", err)
	}
}
