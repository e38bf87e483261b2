package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"autolavado/internal/infra"

	"github.com/rs/zerolog/log"
)

// TelegramJobPayload is the job envelope sent to QueueTelegram.
type TelegramJobPayload struct {
	Texto  string `json:"texto"`
	CitaID uint   `json:"cita_id,omitempty"`
}

// Alertador posts a message to the admin chat.
type Alertador interface {
	EnviarAlerta(ctx context.Context, texto string) error
}

type TelegramWorker struct {
	bot Alertador
	cb  *infra.CircuitBreaker
}

func NewTelegramWorker(bot Alertador, cb *infra.CircuitBreaker) *TelegramWorker {
	return &TelegramWorker{bot: bot, cb: cb}
}

func (w *TelegramWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TelegramJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("telegram_worker: invalid payload")
		return nil
	}
	if payload.Texto == "" {
		return nil
	}
	if err := w.cb.Execute(func() error { return w.bot.EnviarAlerta(ctx, payload.Texto) }); err != nil {
		return fmt.Errorf("telegram_worker: %w", err)
	}
	log.Info().Uint("cita_id", payload.CitaID).Msg("telegram_worker: admin alert sent")
	return nil
}
