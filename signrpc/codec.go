package signrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codec carries signapi.Request and signapi.Response messages as JSON, so that gRPC
// callers see the same payload shape as HTTP callers
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return "json"
}

var _ encoding.Codec = codec{}
