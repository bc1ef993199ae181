package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golden-vcr/request-signer/entry"
)

// KeepaliveInterval is how often an idle connection receives a comment line, so that
// proxies don't time it out
const KeepaliveInterval = 30 * time.Second

// Handler is an HTTP handler that serves a stream of messages using Server-Sent Events
type Handler[T any] struct {
	ctx context.Context
	b   *bus[T]

	// ResolveEventId, if set, tags each message with an event ID. Clients that
	// reconnect with a Last-Event-ID header are then sent the buffered messages that
	// followed that ID.
	ResolveEventId func(message T) string
}

// NewHandler initializes a handler that reads messages from ch and fans them out to
// every open connection, buffering up to backlog of the most recent messages. All
// connections are closed once ctx is done.
func NewHandler[T any](ctx context.Context, ch <-chan T, backlog int) *Handler[T] {
	h := &Handler[T]{
		ctx: ctx,
		b:   newBus[T](backlog),
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				h.b.close()
				return
			case message := <-ch:
				h.b.publish(message)
			}
		}
	}()
	return h
}

func (h *Handler[T]) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)

	accept := req.Header.Get("accept")
	if accept != "" && accept != "*/*" && !strings.HasPrefix(accept, "text/event-stream") {
		http.Error(res, fmt.Sprintf("content-type %s is not supported", accept), http.StatusBadRequest)
		return
	}

	rc := http.NewResponseController(res)
	res.Header().Set("content-type", "text/event-stream")
	res.Header().Set("cache-control", "no-cache")
	res.Header().Set("connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	ch := make(chan T, 32)
	recent := h.b.subscribe(ch)
	defer h.b.unsubscribe(ch)

	// Always write something immediately, so that the client (and any proxy) sees the
	// stream open without waiting on the first message
	if missed := h.since(recent, req.Header.Get("last-event-id")); len(missed) > 0 {
		h.write(res, logger, missed...)
	} else {
		res.Write([]byte(":\n\n"))
	}
	if err := rc.Flush(); err != nil {
		logger.Error("SSE response can't be flushed", "error", err)
		return
	}

	logger.Info("Opened SSE connection", "remoteAddr", req.RemoteAddr)
	keepalive := time.NewTicker(KeepaliveInterval)
	defer keepalive.Stop()
	for {
		select {
		case <-keepalive.C:
			res.Write([]byte(":\n\n"))
			rc.Flush()
		case message := <-ch:
			h.write(res, logger, message)
			rc.Flush()
		case <-h.ctx.Done():
			logger.Info("Server is shutting down; abandoning SSE connection", "remoteAddr", req.RemoteAddr)
			return
		case <-req.Context().Done():
			logger.Info("Closed SSE connection", "remoteAddr", req.RemoteAddr)
			return
		}
	}
}

// since returns the messages in recent that follow lastEventId, or nothing if the ID
// is empty or no longer buffered
func (h *Handler[T]) since(recent []T, lastEventId string) []T {
	if lastEventId == "" || h.ResolveEventId == nil {
		return nil
	}
	for i, message := range recent {
		if h.ResolveEventId(message) == lastEventId {
			return recent[i+1:]
		}
	}
	return nil
}

func (h *Handler[T]) write(res http.ResponseWriter, logger *slog.Logger, messages ...T) {
	for _, message := range messages {
		data, err := json.Marshal(message)
		if err != nil {
			logger.Error("Failed to serialize SSE message as JSON", "error", err)
			continue
		}
		if h.ResolveEventId != nil {
			if eventId := h.ResolveEventId(message); eventId != "" {
				fmt.Fprintf(res, "id: %s\n", eventId)
			}
		}
		fmt.Fprintf(res, "data: %s\n\n", data)
	}
}
