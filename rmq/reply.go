package rmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NewReplier initializes a Replier that publishes replies on its own channel
func NewReplier(conn *amqp.Connection) (Replier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &replier{ch: ch}, nil
}

type replier struct {
	ch *amqp.Channel
}

func (r *replier) Reply(ctx context.Context, to amqp.Delivery, data interface{}) error {
	if to.ReplyTo == "" {
		return fmt.Errorf("delivery has no reply-to queue")
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize reply: %w", err)
	}

	// Replies go through the default exchange, addressed to the requester's queue, and
	// carry the request's correlation ID so the requester can match them up
	mandatory := false
	immediate := false
	return r.ch.PublishWithContext(ctx, "", to.ReplyTo, mandatory, immediate, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: to.CorrelationId,
		Body:          jsonData,
	})
}

var _ Replier = (*replier)(nil)
