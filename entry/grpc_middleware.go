package entry

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// GRPCServerLogging is the gRPC counterpart to Middleware: each unary call is assigned
// a request ID (taken from x-request-id metadata if present) and a request-scoped
// logger, both retrievable from the handler's context, and every call is logged
func GRPCServerLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		// Check for an existing x-request-id header; and generate one if not found
		requestId := ""
		if values := metadata.ValueFromIncomingContext(ctx, HeaderRequestId); len(values) > 0 {
			requestId = values[0]
		}
		if requestId == "" {
			requestId = uuid.NewString()
		}

		// Get the client IP
		remoteAddr := ""
		if p, ok := peer.FromContext(ctx); ok {
			remoteAddr = p.Addr.String()
		}

		// Prepare a logger with the relevant details of this request
		reqLogger := logger.With(
			"requestId", requestId,
			"grpcMethod", info.FullMethod,
			"remoteAddr", remoteAddr,
		)
		reqLogger.Debug("Handling request")

		// Handle the request, measuring how long it takes to execute
		start := time.Now()
		m, err := handler(withRequest(ctx, requestId, reqLogger), req)
		elapsed := time.Since(start)
		elapsedMilliseconds := float64(elapsed.Nanoseconds()) / float64(1000000)

		// Write a final log message indicating that the request is finished, and noting any
		// error that resulted
		reqLogger = reqLogger.With("elapsedMilliseconds", elapsedMilliseconds)
		if err != nil {
			reqLogger = reqLogger.With("error", err)
			if grpcErr, ok := status.FromError(err); ok {
				reqLogger = reqLogger.With("grpcStatusCode", grpcErr.Code().String())
			}
			reqLogger.Error("Request finished with error")
		} else {
			reqLogger.Info("Request finished OK")
		}

		// Pass through the original result value and error unchanged
		return m, err
	}
}
