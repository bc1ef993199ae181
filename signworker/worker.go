// Package signworker serves signing calls that arrive over RabbitMQ: requests are
// consumed from a work queue, and each result is published to the queue named by the
// request's reply-to property, tagged with the request's correlation ID
package signworker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/signapi"
	"github.com/golden-vcr/request-signer/rmq"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Worker struct {
	consumer rmq.Consumer
	replier  rmq.Replier
	events   audit.Publisher
	logger   *slog.Logger
}

func New(consumer rmq.Consumer, replier rmq.Replier, events audit.Publisher, logger *slog.Logger) *Worker {
	return &Worker{
		consumer: consumer,
		replier:  replier,
		events:   events,
		logger:   logger,
	}
}

// Run handles deliveries until ctx is done or the delivery channel is closed, returning
// nil in the former case and an error in the latter
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Recv(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming sign requests: %w", err)
	}
	w.logger.Info("Consuming sign requests")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Application is shutting down; no longer consuming sign requests")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("sign request channel was closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	requestId := d.CorrelationId
	if requestId == "" {
		requestId = d.MessageId
	}
	if requestId == "" {
		requestId = uuid.NewString()
	}
	logger := w.logger.With("requestId", requestId, "replyTo", d.ReplyTo)

	// A delivery we can't decode will never succeed, so it's dropped rather than
	// requeued
	var req signapi.Request
	if err := json.Unmarshal(d.Body, &req); err != nil {
		logger.Error("Rejecting undecodable sign request", "error", err)
		w.events.Publish(ctx, audit.NewEvent(audit.TransportAMQP, requestId, nil, signapi.ErrMissingInput))
		if err := d.Reject(false); err != nil {
			logger.Error("Failed to reject sign request", "error", err)
		}
		return
	}

	signature, err := signapi.Sign(&req)
	w.events.Publish(ctx, audit.NewEvent(audit.TransportAMQP, requestId, req.RequestOption, err))
	res := signapi.Success(signature)
	if err != nil {
		logger.Info("Failed to sign request", "request", req, "error", err)
		res = signapi.Failure(err)
	}

	if d.ReplyTo != "" {
		if err := w.replier.Reply(ctx, d, res); err != nil {
			// The requester is still waiting, so give another worker a chance to answer
			logger.Error("Failed to publish sign reply", "error", err)
			if err := d.Nack(false, true); err != nil {
				logger.Error("Failed to nack sign request", "error", err)
			}
			return
		}
	}
	if err := d.Ack(false); err != nil {
		logger.Error("Failed to ack sign request", "error", err)
	}
}
