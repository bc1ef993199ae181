package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewChannelPublisher(t *testing.T) {
	ch := make(chan Event, 1)
	p := NewChannelPublisher(ch)

	p.Publish(context.Background(), Event{RequestId: "first"})
	p.Publish(context.Background(), Event{RequestId: "dropped"})

	require.Len(t, ch, 1)
	assert.Equal(t, "first", (<-ch).RequestId)
}

func Test_Tee(t *testing.T) {
	a := make(chan Event, 1)
	b := make(chan Event, 1)
	p := Tee(NewChannelPublisher(a), Discard, NewChannelPublisher(b))

	p.Publish(context.Background(), Event{RequestId: "req-1"})

	assert.Equal(t, "req-1", (<-a).RequestId)
	assert.Equal(t, "req-1", (<-b).RequestId)
}
