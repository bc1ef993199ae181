package signapi

import (
	"log/slog"

	"github.com/golden-vcr/request-signer/hmac"
)

// Request is the payload of a signing call
type Request struct {
	RequestOption *hmac.RequestDescription `json:"requestOption"`
	AppSecret     string                   `json:"app_secret"`
}

// LogValue keeps the app secret out of logs
func (r Request) LogValue() slog.Value {
	uri := ""
	if r.RequestOption != nil {
		uri = r.RequestOption.URI
	}
	return slog.GroupValue(
		slog.String("uri", uri),
		slog.Bool("hasSecret", r.AppSecret != ""),
	)
}

var _ slog.LogValuer = Request{}

// Response is the result of a signing call: Status and Signature are set on success,
// and Error is set otherwise
type Response struct {
	Status    string `json:"status,omitempty"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

const StatusSuccess = "success"

func Success(signature string) *Response {
	return &Response{
		Status:    StatusSuccess,
		Signature: signature,
	}
}

func Failure(err error) *Response {
	return &Response{
		Error: err.Error(),
	}
}
