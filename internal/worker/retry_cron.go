package worker

// retry_cron.go
// Background goroutine that periodically moves dead-lettered side-channel
// jobs back onto their queue. A queue whose circuit breaker is open is
// skipped so a downed SMTP server or Telegram API is not hammered.

import (
	"context"
	"time"

	"autolavado/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const retryBatchSize = 10

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB       *redis.Client
	Intervalo time.Duration
	// Breakers maps a queue to the breaker guarding its downstream.
	// Queues without an entry are always retried.
	Breakers map[string]*infra.CircuitBreaker
}

// StartRetryCron launches the DLQ re-drive loop. A non-positive interval
// disables it. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Intervalo <= 0 || cfg.RDB == nil {
		log.Info().Msg("retry_cron: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

// processRetries returns how many jobs were requeued across all queues.
func processRetries(ctx context.Context, cfg RetryCronConfig) int {
	total := 0
	for _, queue := range Queues {
		if cb := cfg.Breakers[queue]; cb != nil && cb.State() == infra.CBOpen {
			log.Debug().Str("queue", queue).Msg("retry_cron: circuit breaker is open, skipping queue")
			continue
		}
		n, err := Reprocesar(ctx, cfg.RDB, queue, retryBatchSize)
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to requeue DLQ entries")
		}
		if n > 0 {
			log.Info().Str("queue", queue).Int("count", n).Msg("retry_cron: DLQ entries requeued")
		}
		total += n
	}
	return total
}
