package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/golden-vcr/request-signer/rmq"
)

// publishTimeout bounds how long a signing call can be held up by a slow broker
const publishTimeout = 2 * time.Second

// Publisher records events. Publishing is best-effort: failures are logged, never
// returned, so that auditing can't cause a signing call to fail.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// NewPublisher initializes a Publisher that sends events through an rmq.Producer,
// typically one bound to a fanout exchange
func NewPublisher(producer rmq.Producer, logger *slog.Logger) Publisher {
	return &publisher{
		producer: producer,
		logger:   logger,
	}
}

type publisher struct {
	producer rmq.Producer
	logger   *slog.Logger
}

func (p *publisher) Publish(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.producer.Send(ctx, ev); err != nil {
		p.logger.Error("Failed to publish audit event", "requestId", ev.RequestId, "error", err)
	}
}

// Discard is a Publisher that drops every event
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}
