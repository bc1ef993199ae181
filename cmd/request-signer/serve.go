package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/config"
	"github.com/golden-vcr/request-signer/entry"
	"github.com/golden-vcr/request-signer/rmq"
	"github.com/golden-vcr/request-signer/signapi"
	"github.com/golden-vcr/request-signer/signrpc"
	"github.com/golden-vcr/request-signer/signworker"
	"github.com/golden-vcr/request-signer/sse"
	"github.com/gorilla/mux"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	eventsPath         = "/api/events"
	eventStreamBuffer  = 64
	eventStreamBacklog = 100
)

func newServeCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the signing service over HTTP, gRPC, and RabbitMQ.",
		Long: `Run the signing service.

Signing calls are accepted as JSON over HTTP (POST /api/sign), over gRPC
(requestsigner.Signer/Sign), and, when RabbitMQ is enabled, from a work queue
whose replies are sent to each message's reply-to queue.

Settings come from the YAML file given with --config, overridden by
environment variables such as HTTP_PORT and RMQ_HOST.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}

func serve(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	app := entry.NewApplication("request-signer", level)
	defer app.Stop()
	logger := app.Log()

	// Without RabbitMQ, signing still works: events only reach the live stream, and
	// only HTTP and gRPC callers are served
	var events audit.Publisher = audit.Discard
	var consumer rmq.Consumer
	var replier rmq.Replier
	if cfg.Rmq.Enabled {
		conn, err := amqp.Dial(rmq.FormatConnectionString(cfg.Rmq.Host, cfg.Rmq.Port, cfg.Rmq.Vhost, cfg.Rmq.User, cfg.Rmq.Password))
		if err != nil {
			app.Fail("Failed to connect to AMQP server", err)
		}
		defer conn.Close()

		events, consumer, replier, err = initRmq(conn, &cfg.Rmq, logger)
		if err != nil {
			app.Fail("Failed to initialize AMQP queues", err)
		}
	}

	// Every event is also fed to GET /api/events, so operators can watch signing
	// calls as they finish
	stream := make(chan audit.Event, eventStreamBuffer)
	events = audit.Tee(events, audit.NewChannelPublisher(stream))

	g, ctx := errgroup.WithContext(app.Context())

	r := mux.NewRouter()
	signapi.NewServer(events).RegisterRoutes(r)
	eventsHandler := sse.NewHandler[audit.Event](ctx, stream, eventStreamBacklog)
	eventsHandler.ResolveEventId = func(ev audit.Event) string { return ev.RequestId }
	r.Path(eventsPath).Methods(http.MethodGet).Handler(eventsHandler)

	g.Go(func() error {
		return entry.RunServer(ctx, logger, r, cfg.Http.BindAddr, cfg.Http.Port)
	})
	if cfg.Grpc.Enabled {
		g.Go(func() error {
			s := signrpc.NewGRPCServer(logger, events)
			return entry.RunGRPCServer(ctx, logger, s, cfg.Grpc.BindAddr, cfg.Grpc.Port)
		})
	}
	if consumer != nil {
		defer consumer.Close()
		worker := signworker.New(consumer, replier, events, logger)
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Fail("Server exited with error", err)
	}
	return nil
}

func initRmq(conn *amqp.Connection, cfg *config.RmqConfig, logger *slog.Logger) (audit.Publisher, rmq.Consumer, rmq.Replier, error) {
	eventsQueue := rmq.QueueDeclaration{Name: cfg.EventsExchange, Type: rmq.QueueTypeFanout}
	producer, err := eventsQueue.NewProducer(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize events producer: %w", err)
	}

	requestQueue := rmq.QueueDeclaration{Name: cfg.RequestQueue, Type: rmq.QueueTypeWork}
	consumer, err := requestQueue.NewConsumer(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize request consumer: %w", err)
	}
	replier, err := rmq.NewReplier(conn)
	if err != nil {
		consumer.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize replier: %w", err)
	}
	return audit.NewPublisher(producer, logger), consumer, replier, nil
}
