package binance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEncodeInsertionOrder(t *testing.T) {
	p := NewParams().
		Set("symbol", "BTCUSDT").
		Set("side", "BUY").
		Set("type", "MARKET").
		SetFloat("quantity", 0.01)

	assert.Equal(t, "symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.01", p.Encode())
}

func TestParamsSetReplacesInPlace(t *testing.T) {
	p := NewParams().
		Set("symbol", "BTCUSDT").
		Set("side", "BUY").
		Set("symbol", "ETHUSDT")

	// Replacing a value keeps the original position.
	assert.Equal(t, "symbol=ETHUSDT&side=BUY", p.Encode())
}

func TestParamsEncodeEscapes(t *testing.T) {
	p := NewParams().Set("note", "a b&c=d")
	assert.Equal(t, "note=a+b%26c%3Dd", p.Encode())
}

func TestParamsFloatFormatting(t *testing.T) {
	p := NewParams().SetFloat("quantity", 0.001).SetFloat("price", 50000)
	assert.Equal(t, "quantity=0.001&price=50000", p.Encode())
}

func TestSignKnownVector(t *testing.T) {
	// RFC 4231-style check: HMAC-SHA256("key", "The quick brown fox
	// jumps over the lazy dog") as lowercase hex.
	s := NewSigner("key")
	sig := s.Sign("The quick brown fox jumps over the lazy dog")
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", sig)
}

func TestSignDeterministic(t *testing.T) {
	s := NewSigner("test-secret")
	encoded := NewParams().
		Set("symbol", "BTCUSDT").
		Set("side", "BUY").
		SetInt("timestamp", 1700000000000).
		Encode()

	first := s.Sign(encoded)
	second := s.Sign(encoded)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
}

func TestSignChangesWithAnyParameter(t *testing.T) {
	s := NewSigner("test-secret")

	base := NewParams().Set("symbol", "BTCUSDT").SetFloat("quantity", 0.01).SetInt("timestamp", 1700000000000)
	changedValue := NewParams().Set("symbol", "ETHUSDT").SetFloat("quantity", 0.01).SetInt("timestamp", 1700000000000)
	changedQty := NewParams().Set("symbol", "BTCUSDT").SetFloat("quantity", 0.02).SetInt("timestamp", 1700000000000)

	sig := s.Sign(base.Encode())
	assert.NotEqual(t, sig, s.Sign(changedValue.Encode()))
	assert.NotEqual(t, sig, s.Sign(changedQty.Encode()))
}

func TestSignChangesWithSecret(t *testing.T) {
	encoded := NewParams().Set("symbol", "BTCUSDT").Encode()
	assert.NotEqual(t, NewSigner("a").Sign(encoded), NewSigner("b").Sign(encoded))
}

func TestSignParamsAppendsSignatureLast(t *testing.T) {
	s := NewSigner("test-secret")
	p := NewParams().Set("symbol", "BTCUSDT").SetInt("timestamp", 1700000000000)

	preimage := p.Encode()
	s.SignParams(p)

	sig, ok := p.Get("signature")
	require.True(t, ok)
	assert.Equal(t, s.Sign(preimage), sig)
	assert.Equal(t, preimage+"&signature="+sig, p.Encode())
}
