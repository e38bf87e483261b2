package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail    = "jobs:email"
	QueueTelegram = "jobs:telegram"

	// MaxIntentos is how many times a job runs before it lands in the DLQ.
	MaxIntentos = 3
)

// Queues lists every queue consumed by the pool, in BRPOP priority order.
var Queues = []string{QueueEmail, QueueTelegram}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers binds each queue to its handler. A nil handler sends the
// queue's jobs straight to the DLQ.
type WorkerHandlers struct {
	Email    Handler
	Telegram Handler
}

func (h *WorkerHandlers) para(queue string) Handler {
	if h == nil {
		return nil
	}
	switch queue {
	case QueueEmail:
		return h.Email
	case QueueTelegram:
		return h.Telegram
	}
	return nil
}

// Cola enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Cola struct {
	rdb *redis.Client
}

func NewCola(rdb *redis.Client) *Cola {
	return &Cola{rdb: rdb}
}

// EncolarEmail pushes an email job to Redis.
func (c *Cola) EncolarEmail(ctx context.Context, p EmailJobPayload) error {
	return c.enqueue(ctx, QueueEmail, "email", p)
}

// EncolarTelegram pushes an admin alert job to Redis.
func (c *Cola) EncolarTelegram(ctx context.Context, p TelegramJobPayload) error {
	return c.enqueue(ctx, QueueTelegram, "telegram", p)
}

func (c *Cola) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, c.rdb, queue, Job{ID: uuid.NewString(), Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop; waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, Queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// processJob runs one raw job. Failures are pushed back with an increased
// attempt count until MaxIntentos, then moved to the DLQ.
func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, Job{Type: "desconocido", Payload: json.RawMessage(raw)}, "payload ilegible: "+err.Error())
		return
	}

	h := handlers.para(queue)
	if h == nil {
		SendToDLQ(ctx, rdb, queue, job, "sin handler para la cola")
		return
	}

	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("job_id", job.ID).Str("type", job.Type).Msg("job processed")
		return
	}

	job.Intentos++
	if job.Intentos >= MaxIntentos {
		SendToDLQ(ctx, rdb, queue, job, err.Error())
		return
	}
	log.Warn().
		Str("job_id", job.ID).
		Str("queue", queue).
		Int("intentos", job.Intentos).
		Err(err).
		Msg("job failed, requeued")
	if perr := push(ctx, rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("job_id", job.ID).Msg("requeue failed")
	}
}
