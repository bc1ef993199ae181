// Package audit records the outcome of each signing call as an event. Events describe
// who asked for a signature and what happened; they never carry the app secret or the
// signature itself.
package audit

import (
	"errors"
	"net/url"
	"time"

	"github.com/golden-vcr/request-signer/hmac"
)

// Transport identifies how a signing call arrived
type Transport string

const (
	TransportHTTP Transport = "http"
	TransportGRPC Transport = "grpc"
	TransportAMQP Transport = "amqp"
)

// Outcome classifies the result of a signing call
type Outcome string

const (
	OutcomeSigned       Outcome = "signed"
	OutcomeRejected     Outcome = "rejected"
	OutcomeInvalidInput Outcome = "invalid-input"
	OutcomeFailed       Outcome = "failed"
)

// Event is published once per signing call
type Event struct {
	RequestId string    `json:"requestId"`
	Transport Transport `json:"transport"`
	Host      string    `json:"host,omitempty"`
	Path      string    `json:"path,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent describes a signing call that targeted the given request (which may be nil
// if the call was rejected before a request could be read) and finished with err
func NewEvent(transport Transport, requestId string, req *hmac.RequestDescription, err error) Event {
	ev := Event{
		RequestId: requestId,
		Transport: transport,
		Outcome:   classify(err),
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if req != nil {
		if u, parseErr := url.Parse(req.URI); parseErr == nil {
			ev.Host = u.Host
			ev.Path = u.Path
		}
	}
	return ev
}

// RejectedError marks errors that reject a call before signing is attempted, e.g.
// because required input is missing
type RejectedError interface {
	error
	Rejected() bool
}

func classify(err error) Outcome {
	if err == nil {
		return OutcomeSigned
	}
	var rejected RejectedError
	if errors.As(err, &rejected) && rejected.Rejected() {
		return OutcomeRejected
	}
	if errors.Is(err, hmac.ErrInvalidInput) {
		return OutcomeInvalidInput
	}
	return OutcomeFailed
}
