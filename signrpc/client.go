package signrpc

import (
	"context"

	"github.com/golden-vcr/request-signer/signapi"
	"google.golang.org/grpc"
)

// Client calls the requestsigner.Signer service
type Client interface {
	Sign(ctx context.Context, req *signapi.Request, opts ...grpc.CallOption) (*signapi.Response, error)
}

func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

type client struct {
	cc grpc.ClientConnInterface
}

func (c *client) Sign(ctx context.Context, req *signapi.Request, opts ...grpc.CallOption) (*signapi.Response, error) {
	out := new(signapi.Response)
	opts = append([]grpc.CallOption{grpc.ForceCodec(codec{})}, opts...)
	if err := c.cc.Invoke(ctx, SignFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
