package binance

import (
	"net/url"
	"strconv"
	"strings"
)

// Params is an ordered request parameter list. Encoding order is the
// insertion order, which is also the order the exchange sees and the
// order the signature is computed over. Params must not be reordered
// after signing.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

func NewParams() *Params {
	return &Params{}
}

// Set appends key=value, replacing the value in place if the key was
// already added.
func (p *Params) Set(key, value string) *Params {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = value
			return p
		}
	}
	p.pairs = append(p.pairs, pair{key: key, value: value})
	return p
}

func (p *Params) SetInt(key string, v int64) *Params {
	return p.Set(key, strconv.FormatInt(v, 10))
}

func (p *Params) SetFloat(key string, v float64) *Params {
	return p.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

func (p *Params) SetBool(key string, v bool) *Params {
	return p.Set(key, strconv.FormatBool(v))
}

func (p *Params) Get(key string) (string, bool) {
	for _, kv := range p.pairs {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pairs)
}

// Encode percent-encodes each pair and joins with "&", preserving
// insertion order. The same Params always encode to the same bytes.
func (p *Params) Encode() string {
	if p == nil || len(p.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.value))
	}
	return b.String()
}
