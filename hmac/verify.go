package hmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks signatures produced by a Signer configured with the same secret
type Verifier interface {
	Verify(req RequestDescription, signature string) error
}

func NewVerifier(secret string) Verifier {
	return &verifier{
		secret: secret,
	}
}

type verifier struct {
	secret string
}

func (v *verifier) Verify(req RequestDescription, signature string) error {
	return Verify(req, v.secret, signature)
}

var _ Verifier = (*verifier)(nil)

// Verify returns nil if signature is the signature of req under secret, or
// ErrVerificationFailed if it isn't. Errors encountered while canonicalizing the
// request are returned as-is.
func Verify(req RequestDescription, secret string, signature string) error {
	computed, err := Sign(req, secret)
	if err != nil {
		return err
	}
	if len(signature) != hex.EncodedLen(sha256.Size) || !hmac.Equal([]byte(signature), []byte(computed)) {
		return ErrVerificationFailed
	}
	return nil
}
