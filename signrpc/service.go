// Package signrpc exposes the signer as a gRPC service, requestsigner.Signer, whose
// unary Sign method accepts and returns the same JSON payloads as the HTTP API
package signrpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/entry"
	"github.com/golden-vcr/request-signer/hmac"
	"github.com/golden-vcr/request-signer/signapi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName    = "requestsigner.Signer"
	SignFullMethod = "/" + ServiceName + "/Sign"
)

// SignerServer is the server API for the requestsigner.Signer service
type SignerServer interface {
	Sign(ctx context.Context, req *signapi.Request) (*signapi.Response, error)
}

// NewGRPCServer prepares a grpc.Server with the Signer service registered, configured
// to use JSON messages and to log every call
func NewGRPCServer(logger *slog.Logger, events audit.Publisher) *grpc.Server {
	s := grpc.NewServer(
		grpc.ForceServerCodec(codec{}),
		grpc.UnaryInterceptor(entry.GRPCServerLogging(logger)),
	)
	RegisterSignerServer(s, NewServer(events))
	return s
}

func RegisterSignerServer(s grpc.ServiceRegistrar, srv SignerServer) {
	s.RegisterService(&serviceDesc, srv)
}

func NewServer(events audit.Publisher) *Server {
	return &Server{
		events: events,
	}
}

type Server struct {
	events audit.Publisher
}

func (s *Server) Sign(ctx context.Context, req *signapi.Request) (*signapi.Response, error) {
	var desc *hmac.RequestDescription
	if req != nil {
		desc = req.RequestOption
	}
	signature, err := signapi.Sign(req)
	s.events.Publish(ctx, audit.NewEvent(audit.TransportGRPC, entry.RequestId(ctx), desc, err))
	if err != nil {
		return nil, toStatus(err)
	}
	return signapi.Success(signature), nil
}

var _ SignerServer = (*Server)(nil)

// toStatus classifies signing errors: bad input of any kind is the caller's fault
func toStatus(err error) error {
	if errors.Is(err, signapi.ErrMissingInput) || errors.Is(err, hmac.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func signHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(signapi.Request)
	if err := dec(in); err != nil {
		return nil, status.Error(codes.InvalidArgument, signapi.ErrMissingInput.Error())
	}
	if interceptor == nil {
		return srv.(SignerServer).Sign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SignFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SignerServer).Sign(ctx, req.(*signapi.Request))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SignerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sign",
			Handler:    signHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "requestsigner",
}
