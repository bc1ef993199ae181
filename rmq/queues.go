package rmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueType identifies one of the ways the signer uses RabbitMQ
type QueueType string

const (
	// QueueTypeFanout identifies a queue used to record events that any number of
	// other services may be interested in: using this queue type results in a fanout
	// exchange being created, with each consumer binding its own temporary queue to
	// that exchange
	QueueTypeFanout QueueType = "fanout"

	// QueueTypeWork identifies a queue used to record requests that should be fulfilled
	// by only a single worker process
	QueueTypeWork QueueType = "work"
)

// QueueDeclaration records the canonical details of how a particular queue is to be
// configured
type QueueDeclaration struct {
	Name string
	Type QueueType
}

// NewProducer declares the queue (or exchange) described by d, then returns a Producer
// that publishes to it
func (d *QueueDeclaration) NewProducer(conn *amqp.Connection) (Producer, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	// Declarations only need a channel for as long as it takes to declare: producers
	// open a fresh channel for each message
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if d.Type == QueueTypeFanout {
		return d.newFanoutProducer(conn, ch)
	}
	return d.newWorkProducer(conn, ch)
}

// NewConsumer declares the queue described by d, then returns a Consumer that receives
// from it. The consumer owns its channel, which is closed when the consumer is closed.
func (d *QueueDeclaration) NewConsumer(conn *amqp.Connection) (Consumer, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if d.Type == QueueTypeFanout {
		return d.newFanoutConsumer(ch)
	}
	return d.newWorkConsumer(ch)
}

func (d *QueueDeclaration) validate() error {
	if d.Name == "" {
		return fmt.Errorf("queue declaration has no name")
	}
	if d.Type != QueueTypeFanout && d.Type != QueueTypeWork {
		return fmt.Errorf("queue '%s' has unrecognized type '%s'", d.Name, d.Type)
	}
	return nil
}
