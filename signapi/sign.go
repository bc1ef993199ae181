package signapi

import "github.com/golden-vcr/request-signer/hmac"

// Sign validates a signing call and returns the signature for the described request.
// Returns ErrMissingInput if either field is absent; errors from the signer are
// returned as-is.
func Sign(req *Request) (string, error) {
	if req == nil || req.RequestOption == nil || req.AppSecret == "" {
		return "", ErrMissingInput
	}
	return hmac.Sign(*req.RequestOption, req.AppSecret)
}
