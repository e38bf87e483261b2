package worker

// email_worker.go
// Processes email jobs from QueueEmail: appointment reminders sent over SMTP
// through the mail circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"

	"autolavado/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	CitaID  uint   `json:"cita_id,omitempty"`
}

// Enviador delivers a plain-text email.
type Enviador interface {
	Enviar(to, subject, body string) error
}

type EmailWorker struct {
	mailer Enviador
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer Enviador, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends the email. Malformed or addressless payloads are dropped
// without retry.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Uint("cita_id", payload.CitaID).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Enviar(payload.ToEmail, payload.Subject, payload.Body)
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Uint("cita_id", payload.CitaID).Msg("email_worker: reminder sent")
	return nil
}
