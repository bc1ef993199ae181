package signrpc

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/hmac"
	"github.com/golden-vcr/request-signer/signapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) last() audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// startServer runs a Signer service over an in-memory listener and returns a client
// connected to it
func startServer(t *testing.T) (Client, *recordingPublisher) {
	events := &recordingPublisher{}
	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer(slog.Default(), events)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn), events
}

func Test_Sign(t *testing.T) {
	c, events := startServer(t)

	t.Run("signature is returned for a valid request", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "grpc-req-1")
		res, err := c.Sign(ctx, &signapi.Request{
			RequestOption: &hmac.RequestDescription{
				URI:   "https://api.example.com/v1/messages",
				Query: hmac.QueryParams{"b": "2", "a": "1"},
			},
			AppSecret: "s3cr3t",
		})
		require.NoError(t, err)
		assert.Equal(t, signapi.StatusSuccess, res.Status)
		assert.Equal(t, "13708a32e328184fb3a0613475855f8cae405f665b5ca072f31d927a92da7ab3", res.Signature)

		ev := events.last()
		assert.Equal(t, "grpc-req-1", ev.RequestId)
		assert.Equal(t, audit.TransportGRPC, ev.Transport)
		assert.Equal(t, audit.OutcomeSigned, ev.Outcome)
	})

	t.Run("missing secret is an invalid argument", func(t *testing.T) {
		_, err := c.Sign(context.Background(), &signapi.Request{
			RequestOption: &hmac.RequestDescription{URI: "https://api.example.com/v1/messages"},
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Equal(t, audit.OutcomeRejected, events.last().Outcome)
	})

	t.Run("invalid uri is an invalid argument", func(t *testing.T) {
		_, err := c.Sign(context.Background(), &signapi.Request{
			RequestOption: &hmac.RequestDescription{URI: "/relative"},
			AppSecret:     "s3cr3t",
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "invalid uri")
		assert.Equal(t, audit.OutcomeInvalidInput, events.last().Outcome)
	})
}

func Test_Server_nilRequest(t *testing.T) {
	s := NewServer(audit.Discard)
	_, err := s.Sign(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
