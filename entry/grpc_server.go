package entry

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// RunGRPCServer blocks while a gRPC server runs, until ctx is done, then stops the
// server gracefully. Returns nil once the server has stopped cleanly.
func RunGRPCServer(ctx context.Context, logger *slog.Logger, s *grpc.Server, bindAddr string, listenPort int) error {
	// Bind to the configured port and begin listening for TCP connections
	addr := fmt.Sprintf("%s:%d", bindAddr, listenPort)
	listenConfig := net.ListenConfig{}
	lis, err := listenConfig.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	logger.Info("Now listening for gRPC", "bindAddr", bindAddr, "listenPort", listenPort)

	// Kick off a goroutine which calls s.Serve
	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(func() error { return s.Serve(lis) })

	// Block, running the server all the while, until our application-level context is
	// done or the server fails on its own
	<-wgCtx.Done()
	if ctx.Err() != nil {
		cancelErr := context.Cause(ctx)
		if cancelErr != nil && cancelErr != ctx.Err() {
			logger.Error("Closing gRPC server due to application error", "error", cancelErr)
		} else {
			logger.Info("Application is shutting down cleanly; closing gRPC server")
		}
		s.GracefulStop()
	}

	// Block until s.Serve returns so we can ensure that the server is closed
	if err := wg.Wait(); err != nil {
		return fmt.Errorf("error running gRPC server: %w", err)
	}
	logger.Info("gRPC server closed")
	return nil
}
