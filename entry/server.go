package entry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests may take to finish once shutdown
// begins
const shutdownTimeout = 10 * time.Second

// RunServer blocks while an HTTP server runs, until ctx is done. Every request is
// handled through Recovery and Middleware. Returns nil once the server has shut down
// cleanly.
func RunServer(ctx context.Context, logger *slog.Logger, handler http.Handler, bindAddr string, listenPort int) error {
	// Prepare an http.Server with reasonable default config, using our provided handler
	addr := fmt.Sprintf("%s:%d", bindAddr, listenPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           Middleware(logger)(Recovery(handler)),
		ErrorLog:          NewErrorLog(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Kick off a goroutine which calls server.ListenAndServe()
	logger.Info("Now listening", "bindAddr", bindAddr, "listenPort", listenPort)
	wg, wgCtx := errgroup.WithContext(ctx)
	wg.Go(server.ListenAndServe)

	// Once our application-level context is closed, stop accepting new connections and
	// let in-flight requests finish. If the server failed on its own, there's nothing
	// to shut down.
	<-wgCtx.Done()
	if ctx.Err() != nil {
		logger.Info("Received signal; closing server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server cleanly", "error", err)
		}
	}

	// Block until ListenAndServe returns
	err := wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server closed")
		return nil
	}
	return fmt.Errorf("error running server: %w", err)
}

// NewErrorLog adapts an slog.Logger to the simpler log.Logger interface used by
// http.Server's ErrorLog field
func NewErrorLog(logger *slog.Logger) *log.Logger {
	w := errorLogWriter{logger}
	return log.New(w, "", 0)
}

// errorLogWriter is an implementation of io.Writer that handles http server errors by
// writing them to an underlying slog.Logger
type errorLogWriter struct {
	logger *slog.Logger
}

func (w errorLogWriter) Write(data []byte) (int, error) {
	w.logger.Error("http.Server error", "error", string(data))
	return len(data), nil
}
