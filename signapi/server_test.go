package signapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/entry"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func newTestRouter() (*mux.Router, *recordingPublisher) {
	events := &recordingPublisher{}
	r := mux.NewRouter()
	NewServer(events).RegisterRoutes(r)
	return r, events
}

func Test_Server_handleSign(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantStatus  int
		wantBody    string
		wantOutcome audit.Outcome
	}{
		{
			"signature is returned for a valid request",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":{"uri":"https://api.example.com/v1/messages","qs":{"b":"2","a":"1"}},"app_secret":"s3cr3t"}`,
			http.StatusOK,
			`{"status":"success","signature":"13708a32e328184fb3a0613475855f8cae405f665b5ca072f31d927a92da7ab3"}`,
			audit.OutcomeSigned,
		},
		{
			"short path is also served",
			http.MethodPost,
			"/sign",
			`{"requestOption":{"uri":"https://api.example.com/v1/messages","qs":{},"headers":{},"body":{}},"app_secret":"s3cr3t"}`,
			http.StatusOK,
			`{"status":"success","signature":"d137f9c9bf38cc5164e532c94d0f3845f95eeeea02a2d7fa8d34deea81998716"}`,
			audit.OutcomeSigned,
		},
		{
			"missing app_secret is a bad request",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":{"uri":"https://api.example.com/v1/messages"}}`,
			http.StatusBadRequest,
			`{"error":"Missing requestOption or app_secret"}`,
			audit.OutcomeRejected,
		},
		{
			"empty app_secret is a bad request",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":{"uri":"https://api.example.com/v1/messages"},"app_secret":""}`,
			http.StatusBadRequest,
			`{"error":"Missing requestOption or app_secret"}`,
			audit.OutcomeRejected,
		},
		{
			"null requestOption is a bad request",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":null,"app_secret":"s3cr3t"}`,
			http.StatusBadRequest,
			`{"error":"Missing requestOption or app_secret"}`,
			audit.OutcomeRejected,
		},
		{
			"malformed payload is a bad request",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":`,
			http.StatusBadRequest,
			`{"error":"Missing requestOption or app_secret"}`,
			audit.OutcomeRejected,
		},
		{
			"invalid uri is a server fault carrying the detail",
			http.MethodPost,
			"/api/sign",
			`{"requestOption":{"uri":"/v1/messages"},"app_secret":"s3cr3t"}`,
			http.StatusInternalServerError,
			`{"error":"invalid uri: '/v1/messages' is not an absolute URI"}`,
			audit.OutcomeInvalidInput,
		},
		{
			"GET is not allowed",
			http.MethodGet,
			"/api/sign",
			``,
			http.StatusMethodNotAllowed,
			`{"error":"Method not allowed"}`,
			audit.OutcomeRejected,
		},
		{
			"PUT is not allowed",
			http.MethodPut,
			"/sign",
			`{"requestOption":{"uri":"https://api.example.com/v1/messages"},"app_secret":"s3cr3t"}`,
			http.StatusMethodNotAllowed,
			`{"error":"Method not allowed"}`,
			audit.OutcomeRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, events := newTestRouter()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			res := httptest.NewRecorder()
			r.ServeHTTP(res, req)

			assert.Equal(t, tt.wantStatus, res.Code)
			assert.Equal(t, "application/json", res.Header().Get("content-type"))
			assert.JSONEq(t, tt.wantBody, res.Body.String())

			require.Len(t, events.events, 1)
			assert.Equal(t, audit.TransportHTTP, events.events[0].Transport)
			assert.Equal(t, tt.wantOutcome, events.events[0].Outcome)
		})
	}
}

func Test_Server_secretIsNeverEchoed(t *testing.T) {
	r, events := newTestRouter()
	body := `{"requestOption":{"uri":"not a uri"},"app_secret":"very-secret-value"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sign", strings.NewReader(body))
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), "very-secret-value")
	for _, ev := range events.events {
		data, err := json.Marshal(ev)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "very-secret-value")
	}
}

func Test_Server_oversizedPayload(t *testing.T) {
	r, _ := newTestRouter()
	padding := strings.Repeat("x", MaxRequestBytes)
	body := `{"requestOption":{"uri":"https://h/p","qs":{"pad":"` + padding + `"}},"app_secret":"s3cr3t"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sign", strings.NewReader(body))
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

// brokenWriter accepts headers but fails every body write, as a closed connection would
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func Test_Server_writeFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	r, _ := newTestRouter()
	handler := entry.Middleware(logger)(r)

	body := `{"requestOption":{"uri":"https://api.example.com/v1/messages"},"app_secret":"s3cr3t"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sign", strings.NewReader(body))
	res := brokenWriter{httptest.NewRecorder()}
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, logs.String(), "Failed to write response")
	assert.Contains(t, logs.String(), "connection reset")
	assert.NotContains(t, logs.String(), "s3cr3t")
}
