package signapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/golden-vcr/request-signer/audit"
	"github.com/golden-vcr/request-signer/entry"
	"github.com/gorilla/mux"
)

// MaxRequestBytes caps the size of a signing call's JSON payload
const MaxRequestBytes = 1 << 20

// SignPaths are the routes at which signing calls are accepted
var SignPaths = []string{"/api/sign", "/sign"}

type Server struct {
	events audit.Publisher
}

func NewServer(events audit.Publisher) *Server {
	return &Server{
		events: events,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	for _, path := range SignPaths {
		r.Path(path).Methods(http.MethodPost).HandlerFunc(s.handleSign)
		r.Path(path).HandlerFunc(s.handleMethodNotAllowed)
	}
}

func (s *Server) handleSign(res http.ResponseWriter, req *http.Request) {
	logger := entry.Log(req)
	requestId := entry.RequestId(req.Context())

	// A payload that can't be decoded is missing its fields as far as we're concerned
	var payload Request
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, MaxRequestBytes)).Decode(&payload); err != nil {
		logger.Info("Failed to decode signing request", "error", err)
		s.events.Publish(req.Context(), audit.NewEvent(audit.TransportHTTP, requestId, nil, ErrMissingInput))
		writeResponse(res, req, http.StatusBadRequest, Failure(ErrMissingInput))
		return
	}

	signature, err := Sign(&payload)
	s.events.Publish(req.Context(), audit.NewEvent(audit.TransportHTTP, requestId, payload.RequestOption, err))
	if errors.Is(err, ErrMissingInput) {
		writeResponse(res, req, http.StatusBadRequest, Failure(err))
		return
	}
	if err != nil {
		logger.Error("Failed to sign request", "request", payload, "error", err)
		writeResponse(res, req, http.StatusInternalServerError, Failure(err))
		return
	}
	writeResponse(res, req, http.StatusOK, Success(signature))
}

func (s *Server) handleMethodNotAllowed(res http.ResponseWriter, req *http.Request) {
	s.events.Publish(req.Context(), audit.NewEvent(audit.TransportHTTP, entry.RequestId(req.Context()), nil, ErrUnsupportedMethod))
	res.Header().Set("allow", http.MethodPost)
	writeResponse(res, req, http.StatusMethodNotAllowed, Failure(ErrUnsupportedMethod))
}

func writeResponse(res http.ResponseWriter, req *http.Request, status int, body *Response) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		entry.Log(req).Error("Failed to write response", "status", status, "error", err)
	}
}
