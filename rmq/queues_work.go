package rmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// workPrefetchCount limits how many unacknowledged requests a single worker holds at
// once, so that requests are spread across workers
const workPrefetchCount = 16

// declareWorkQueue declares a durable queue from which requests are distributed to
// competing worker processes
func declareWorkQueue(ch *amqp.Channel, name string) (*amqp.Queue, error) {
	durable := true
	autoDelete := false
	exclusive := false
	noWait := false
	q, err := ch.QueueDeclare(name, durable, autoDelete, exclusive, noWait, nil)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// workProducer is an rmq.Producer that publishes directly to a work queue
type workProducer struct {
	conn *amqp.Connection
	q    *amqp.Queue
}

func (p *workProducer) Send(ctx context.Context, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Publish via the default exchange, which routes to the queue of the same name
	mandatory := false
	immediate := false
	return ch.PublishWithContext(ctx, "", p.q.Name, mandatory, immediate, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         jsonData,
	})
}

func (d *QueueDeclaration) newWorkProducer(conn *amqp.Connection, ch *amqp.Channel) (Producer, error) {
	q, err := declareWorkQueue(ch, d.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to declare work queue '%s': %w", d.Name, err)
	}
	return &workProducer{
		conn: conn,
		q:    q,
	}, nil
}

// workConsumer is an rmq.Consumer that contends with other consumers to receive
// requests from a work queue
type workConsumer struct {
	ch *amqp.Channel
	q  *amqp.Queue
}

func (c *workConsumer) Close() {
	c.ch.Close()
}

func (c *workConsumer) Recv(ctx context.Context) (<-chan amqp.Delivery, error) {
	autoAck := false
	exclusive := false
	noLocal := false
	noWait := false
	return c.ch.ConsumeWithContext(ctx, c.q.Name, "", autoAck, exclusive, noLocal, noWait, nil)
}

func (d *QueueDeclaration) newWorkConsumer(ch *amqp.Channel) (Consumer, error) {
	q, err := declareWorkQueue(ch, d.Name)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare work queue '%s': %w", d.Name, err)
	}
	if err := ch.Qos(workPrefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set prefetch count for work queue '%s': %w", d.Name, err)
	}
	return &workConsumer{
		ch: ch,
		q:  q,
	}, nil
}
