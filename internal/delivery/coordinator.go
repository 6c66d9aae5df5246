package delivery

import (
	"context"
	"log"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/registry"
	"messenger-service/internal/repositories"
)

// Coordinator orchestrates a send: persist, acknowledge the sender with the
// canonical stored message, then best-effort push to the receiver.
type Coordinator struct {
	messages repositories.MessageRepository
	registry *registry.Registry
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(messages repositories.MessageRepository, reg *registry.Registry) *Coordinator {
	return &Coordinator{messages: messages, registry: reg}
}

// Send persists the message and returns the canonical record to the caller.
// If the receiver has a live connection the same record is pushed as a
// newMessage event and, after a successful push, marked delivered. Push
// failures are swallowed: the sender acknowledgment is already final and a
// dropped connection is treated the same as an offline receiver. There is no
// retry; an offline receiver picks the message up from history.
func (c *Coordinator) Send(ctx context.Context, senderID int, receiverID int, text string, attachmentURL string) (models.Message, error) {
	msg, err := c.messages.Append(ctx, senderID, receiverID, text, attachmentURL)
	if err != nil {
		return models.Message{}, err
	}

	handle, ok := c.registry.Lookup(receiverID)
	if !ok {
		observability.IncPushOutcome(models.EventNewMessage, observability.PushReceiverOffline)
		return msg, nil
	}

	if err := handle.Push(ctx, models.Event{Type: models.EventNewMessage, Message: &msg}); err != nil {
		log.Printf("push to user %d failed, leaving message %d undelivered: %v", receiverID, msg.ID, err)
		observability.IncPushOutcome(models.EventNewMessage, observability.PushFailed)
		return msg, nil
	}

	if err := c.messages.MarkDelivered(ctx, msg.ID); err != nil {
		log.Printf("mark delivered failed for message %d: %v", msg.ID, err)
		return msg, nil
	}
	msg.Delivered = true

	observability.IncPushOutcome(models.EventNewMessage, observability.PushDelivered)
	return msg, nil
}
