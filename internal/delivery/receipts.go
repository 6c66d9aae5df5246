package delivery

import (
	"context"
	"log"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/registry"
	"messenger-service/internal/repositories"
)

// Propagator records read receipts and relays them to the author's live
// connection.
type Propagator struct {
	messages repositories.MessageRepository
	registry *registry.Registry
}

// NewPropagator builds a Propagator.
func NewPropagator(messages repositories.MessageRepository, reg *registry.Registry) *Propagator {
	return &Propagator{messages: messages, registry: reg}
}

// PropagateRead marks every author→reader message as read, then pushes a
// single readReceipt event to the author if connected. The receipt is only
// emitted when the batch actually flipped something, so repeat calls are
// no-ops. An offline author sees the read state on their next history fetch;
// no retry queue is needed since the state is already durable.
func (p *Propagator) PropagateRead(ctx context.Context, readerID int, authorID int) error {
	affected, err := p.messages.MarkConversationRead(ctx, authorID, readerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	handle, ok := p.registry.Lookup(authorID)
	if !ok {
		observability.IncPushOutcome(models.EventReadReceipt, observability.PushReceiverOffline)
		return nil
	}

	receipt := models.ReadReceipt{From: readerID, To: authorID}
	if err := handle.Push(ctx, models.Event{Type: models.EventReadReceipt, Receipt: &receipt}); err != nil {
		log.Printf("read receipt push to user %d failed: %v", authorID, err)
		observability.IncPushOutcome(models.EventReadReceipt, observability.PushFailed)
		return nil
	}

	observability.IncPushOutcome(models.EventReadReceipt, observability.PushDelivered)
	return nil
}
