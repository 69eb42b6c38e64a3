package capi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

// Params is an ordered string-keyed parameter map. Keys keep the position of
// their first Set; setting an existing key replaces its value in place.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams builds Params from alternating key, value arguments.
func NewParams(kv ...any) *Params {
	p := &Params{values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return p
}

// Set stores a string, bool, integer, float or nil value under key.
func (p *Params) Set(key string, value any) *Params {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// SetIf stores value only when cond holds; used for optional fields.
func (p *Params) SetIf(cond bool, key string, value any) *Params {
	if cond {
		p.Set(key, value)
	}
	return p
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Del removes key.
func (p *Params) Del(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := &Params{values: make(map[string]any, p.Len())}
	for _, k := range p.Keys() {
		c.Set(k, p.values[k])
	}
	return c
}

// Values renders the parameters for a query string. Booleans become
// "true"/"false" and nil values are sent empty.
func (p *Params) Values() url.Values {
	v := make(url.Values, p.Len())
	for _, k := range p.Keys() {
		v.Set(k, formatValue(p.values[k]))
	}
	return v
}

// JSON renders the parameters as a JSON object whose members appear in
// insertion order.
func (p *Params) JSON() ([]byte, error) {
	out := []byte("{}")
	for _, k := range p.Keys() {
		var err error
		out, err = sjson.SetBytes(out, escapePathKey(k), p.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding parameter %q: %w", k, err)
		}
	}
	return out, nil
}

// String renders the parameters for logs with the password and token masked.
func (p *Params) String() string {
	var b strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if isSecretParam(k) {
			b.WriteString("***")
			continue
		}
		b.WriteString(formatValue(p.values[k]))
	}
	return b.String()
}

func isSecretParam(key string) bool {
	return key == ParamPassword || key == ParamToken
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// escapePathKey escapes the characters sjson treats as path syntax so a key
// is always written as a single top-level member.
func escapePathKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', ':', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
