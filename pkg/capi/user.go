package capi

import (
	"context"
	"encoding/json"
)

// Notification is a message shown to a user in the application.
type Notification struct {
	User    string
	Subject string
	Message string
}

// SendNotification delivers a notification to a user.
func (s *Session) SendNotification(ctx context.Context, n Notification) (json.RawMessage, error) {
	params := NewParams("user", n.User, "subject", n.Subject, "message", n.Message)
	return s.Invoke(ctx, PathUserNotification, POST, params)
}

// SetUserContext switches the active context (company) of a user.
func (s *Session) SetUserContext(ctx context.Context, user, contextName string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathUserContext, POST, NewParams("user", user, "context", contextName))
}

// GetSSOContext returns the single sign-on contexts of a user.
func (s *Session) GetSSOContext(ctx context.Context, user string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathSSOContext, GET, NewParams("user", user))
}

// CreateSSOContext creates a single sign-on context for a user.
func (s *Session) CreateSSOContext(ctx context.Context, user, contextName string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathSSOContext, POST, NewParams("user", user, "context", contextName))
}

// DeleteSSOContext deletes one context of a user, or all of them when
// contextID is empty.
func (s *Session) DeleteSSOContext(ctx context.Context, user, contextID string) (json.RawMessage, error) {
	params := NewParams("user", user).SetIf(contextID != "", "contextId", contextID)
	return s.Invoke(ctx, PathSSOContext, DELETE, params)
}
