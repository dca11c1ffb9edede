package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer computes Binance request signatures: HMAC-SHA256 keyed by the
// secret over the UTF-8 bytes of the encoded parameter string, hex
// encoded in lowercase. The input must be the exact query/body string
// the request will carry, since the exchange recomputes the signature
// over the literal string it receives.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignParams appends the signature parameter computed over the current
// encoding of p. Anything added after this invalidates the signature.
func (s *Signer) SignParams(p *Params) {
	p.Set("signature", s.Sign(p.Encode()))
}
