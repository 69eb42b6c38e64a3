package capi

import (
	"context"
)

// CheckURL reports whether a domain can still be registered. A taken domain
// is reported by the service as an APIError with CodeURLExists.
func (s *Session) CheckURL(ctx context.Context, url string) (bool, error) {
	payload, err := s.InvokePayload(ctx, PathURL, POST, NewParams("url", url))
	if err != nil {
		return false, err
	}
	code, ok := payload.ResultCode()
	return ok && code == CodeURLAvailable, nil
}

// GetPrice returns the price quote for a number of companies and employees,
// as formatted by the service.
func (s *Session) GetPrice(ctx context.Context, companies, employees int) (string, error) {
	payload, err := s.InvokePayload(ctx, PathPrice, POST, NewParams("companies", companies, "employees", employees))
	if err != nil {
		return "", err
	}
	msg := payload.Get("result.message")
	if !msg.Exists() {
		return "", ErrInvalidEnvelope.New("price response has no result.message")
	}
	return msg.String(), nil
}
