package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer computes signatures for request descriptions using a fixed app secret
type Signer interface {
	Sign(req RequestDescription) (string, error)
}

func NewSigner(secret string) Signer {
	return &signer{
		secret: secret,
	}
}

type signer struct {
	secret string
}

func (s *signer) Sign(req RequestDescription) (string, error) {
	return Sign(req, s.secret)
}

var _ Signer = (*signer)(nil)

// Sign returns the signature for a request: the lowercase hex HMAC-SHA256 digest,
// keyed by secret, of the request's canonical string with secret prepended and
// appended. The secret never appears in a returned error.
func Sign(req RequestDescription, secret string) (string, error) {
	canonical, err := CanonicalString(req)
	if err != nil {
		return "", err
	}

	hash := hmac.New(sha256.New, []byte(secret))
	if _, err := hash.Write([]byte(secret)); err != nil {
		return "", fmt.Errorf("failed to write secret prefix to hash: %w", err)
	}
	if _, err := hash.Write([]byte(canonical)); err != nil {
		return "", fmt.Errorf("failed to write canonical string to hash: %w", err)
	}
	if _, err := hash.Write([]byte(secret)); err != nil {
		return "", fmt.Errorf("failed to write secret suffix to hash: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
