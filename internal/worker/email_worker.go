package worker

// email_worker.go
// Sends receipt emails via SMTP. Sends go through the circuit breaker so a
// downed relay fast-fails; failed jobs re-enter the queue with a bounded
// attempt count and land in the DLQ when exhausted.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/olatunbossun/craftcart/internal/infra"
)

const maxEmailAttempts = 3

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer     *infra.Mailer
	cb         *infra.CircuitBreaker
	dispatcher *Dispatcher
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, dispatcher *Dispatcher) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, dispatcher: dispatcher}
}

// Process sends an email with the PDF receipt as attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if sendErr == nil {
		log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent")
		return
	}

	payload.Attempts++
	if payload.Attempts >= maxEmailAttempts {
		log.Error().Err(sendErr).Str("to", payload.ToEmail).Int("attempts", payload.Attempts).
			Msg("email_worker: max attempts exceeded, moving to DLQ")
		SendToDLQ(ctx, w.dispatcher.rdb, QueueEmail, "email", raw, sendErr.Error(), payload.Attempts)
		return
	}

	log.Warn().Err(sendErr).Str("to", payload.ToEmail).Int("attempt", payload.Attempts).
		Msg("email_worker: send failed, requeueing")
	if err := w.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("email_worker: requeue failed")
	}
}
