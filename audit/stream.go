package audit

import "context"

// NewChannelPublisher returns a Publisher that forwards events to ch, e.g. to feed a
// live event stream. Events are dropped while ch is full.
func NewChannelPublisher(ch chan<- Event) Publisher {
	return channelPublisher(ch)
}

type channelPublisher chan<- Event

func (p channelPublisher) Publish(ctx context.Context, ev Event) {
	select {
	case p <- ev:
	default:
	}
}

// Tee returns a Publisher that publishes every event to each of publishers, in order
func Tee(publishers ...Publisher) Publisher {
	return tee(publishers)
}

type tee []Publisher

func (t tee) Publish(ctx context.Context, ev Event) {
	for _, p := range t {
		p.Publish(ctx, ev)
	}
}
