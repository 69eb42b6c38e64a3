package capi

import (
	"context"
	"encoding/json"
)

// Call issues a GET with only the token to the endpoint named by a dotted
// method name, e.g. "account.price" for "account/price". It is a fallback
// for endpoints without a dedicated method.
func (s *Session) Call(ctx context.Context, method string) (json.RawMessage, error) {
	return s.Invoke(ctx, SymbolicPath(method), GET, nil)
}
