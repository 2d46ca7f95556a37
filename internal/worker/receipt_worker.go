package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: loads the order, renders the
// PDF receipt, then hands delivery off to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/olatunbossun/craftcart/internal/infra"
	"github.com/olatunbossun/craftcart/internal/repository"
)

// ReceiptWorker renders order receipt PDFs.
type ReceiptWorker struct {
	orderRepo   repository.OrderRepository
	dispatcher  *Dispatcher
	storagePath string
}

func NewReceiptWorker(orderRepo repository.OrderRepository, dispatcher *Dispatcher, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{orderRepo: orderRepo, dispatcher: dispatcher, storagePath: storagePath}
}

// Process renders the PDF and enqueues the email job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		log.Error().Str("order_id", payload.OrderID).Msg("receipt_worker: malformed order id")
		return
	}

	order, err := w.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: order not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(order, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: PDF generation failed")
		SendToDLQ(ctx, w.dispatcher.rdb, QueueReceipt, "receipt", raw, err.Error(), 1)
		return
	}
	log.Info().Str("order_id", payload.OrderID).Str("pdf", pdfPath).Msg("receipt_worker: receipt generated")

	if payload.BuyerEmail == "" {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: payload.BuyerEmail,
		Subject: fmt.Sprintf("Your CraftCart receipt — order %s", order.ID),
		Body:    fmt.Sprintf("Thanks for your order! Total: $%s. Your receipt is attached.", order.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: failed to enqueue email")
	}
}
