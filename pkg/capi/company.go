package capi

import (
	"context"
	"encoding/json"
)

// CreateCompany adds a company to an account.
func (s *Session) CreateCompany(ctx context.Context, account, name string) (json.RawMessage, error) {
	return s.Invoke(ctx, PathCompany, POST, NewParams(ParamAccount, account, "name", name))
}

// MoveCompany moves a company to another account. Success is reported with
// result code CodeCompanyMoved.
func (s *Session) MoveCompany(ctx context.Context, companyToken, accountToken string) (json.RawMessage, error) {
	params := NewParams(ParamAction, "move", "company", companyToken, ParamAccount, accountToken)
	return s.Invoke(ctx, PathCompany, POST, params)
}

// SetCompanyIntegration enables or disables an integration for a company.
func (s *Session) SetCompanyIntegration(ctx context.Context, company, integration string, enabled bool) (json.RawMessage, error) {
	params := NewParams("company", company, "integration", integration, "enabled", enabled)
	return s.Invoke(ctx, PathCompanyIntegration, PUT, params)
}
