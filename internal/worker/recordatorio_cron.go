package worker

// recordatorio_cron.go
// Background goroutine that periodically sends reminders for confirmed
// appointments starting soon. The heavy lifting lives behind Recordador so
// the cron only owns the schedule.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Recordador dispatches reminders for appointments due after ahora and
// returns how many were sent.
type Recordador interface {
	EnviarRecordatorios(ctx context.Context, ahora time.Time) (int, error)
}

// StartRecordatorioCron ticks every intervalo until ctx is cancelled.
func StartRecordatorioCron(ctx context.Context, r Recordador, intervalo time.Duration) {
	if intervalo <= 0 {
		intervalo = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", intervalo).Msg("recordatorio_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("recordatorio_cron: shutting down")
				return
			case t := <-ticker.C:
				tick(ctx, r, t)
			}
		}
	}()
}

func tick(ctx context.Context, r Recordador, ahora time.Time) {
	n, err := r.EnviarRecordatorios(ctx, ahora)
	if err != nil {
		log.Error().Err(err).Msg("recordatorio_cron: tick failed")
		return
	}
	if n > 0 {
		log.Info().Int("enviados", n).Msg("recordatorio_cron: reminders dispatched")
	}
}
