package capi

import (
	"context"
	"encoding/json"
)

// DefaultLanguage is used when an operation takes an optional language.
const DefaultLanguage = "nl"

// AccountInput holds the fields of a new account.
type AccountInput struct {
	Name      string
	Email     string
	Affiliate string
	Language  string // DefaultLanguage when empty
	// OverrideExistingUser lets the service attach the account to a user
	// that already exists with the same email.
	OverrideExistingUser bool
}

// AccountUpdate holds the fields to change on an account. Empty fields are
// left untouched.
type AccountUpdate struct {
	Name      string
	Email     string
	Affiliate string
	Language  string
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// CreateAccount registers a new account.
func (s *Session) CreateAccount(ctx context.Context, in AccountInput) (json.RawMessage, error) {
	params := NewParams(
		"name", in.Name,
		"email", in.Email,
		"language", languageOrDefault(in.Language),
		"affiliate", in.Affiliate,
		"overrideExistingUser", in.OverrideExistingUser,
	)
	return s.Invoke(ctx, PathAccount, POST, params)
}

// UpdateAccount changes the non-empty fields of upd on the given account.
func (s *Session) UpdateAccount(ctx context.Context, account string, upd AccountUpdate) (json.RawMessage, error) {
	params := NewParams(ParamAccount, account).
		SetIf(upd.Name != "", "name", upd.Name).
		SetIf(upd.Email != "", "email", upd.Email).
		SetIf(upd.Language != "", "language", upd.Language).
		SetIf(upd.Affiliate != "", "affiliate", upd.Affiliate)
	return s.Invoke(ctx, PathAccount, POST, params)
}

// GetAccount looks an account up by its domain.
func (s *Session) GetAccount(ctx context.Context, domain string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathAccount, GET, NewParams("domain", domain))
}

// SearchAccount looks accounts up by email address.
func (s *Session) SearchAccount(ctx context.Context, email, language string) (json.RawMessage, error) {
	params := NewParams("search", email, "language", languageOrDefault(language))
	return s.Invoke(ctx, PathAccount, GET, params)
}

// GetAccountPrice returns the current price of an account.
func (s *Session) GetAccountPrice(ctx context.Context, account string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathAccountPrice, POST, NewParams(ParamAccount, account))
}

// SendReminders asks the service to send the pending reminders of an account.
func (s *Session) SendReminders(ctx context.Context, account string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathAccountReminders, POST, NewParams(ParamAccount, account))
}
