package rmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer sends JSON-serialized messages to a single queue or exchange
type Producer interface {
	Send(ctx context.Context, data interface{}) error
}

// Consumer receives messages from a single queue. Deliveries must be acknowledged by
// the caller.
type Consumer interface {
	Close()
	Recv(ctx context.Context) (<-chan amqp.Delivery, error)
}

// Replier answers a request delivery by publishing a JSON-serialized message to the
// queue named by the delivery's ReplyTo property
type Replier interface {
	Reply(ctx context.Context, to amqp.Delivery, data interface{}) error
}
