package capi

import (
	"context"
	"encoding/json"
)

// Discount is a discount on an account. ID identifies an existing discount
// for updates.
type Discount struct {
	Account     string
	ID          string
	Percentage  float64
	Months      int // 0 for no end
	Description string
}

func (d Discount) params() *Params {
	return NewParams(ParamAccount, d.Account).
		SetIf(d.ID != "", "discount", d.ID).
		Set("percentage", d.Percentage).
		SetIf(d.Months > 0, "months", d.Months).
		SetIf(d.Description != "", "description", d.Description)
}

// AddDiscount creates a discount on an account.
func (s *Session) AddDiscount(ctx context.Context, d Discount) (json.RawMessage, error) {
	d.ID = ""
	return s.Invoke(ctx, PathAccountDiscount, POST, d.params())
}

// UpdateDiscount changes the discount d.ID.
func (s *Session) UpdateDiscount(ctx context.Context, d Discount) (json.RawMessage, error) {
	return s.Invoke(ctx, PathAccountDiscount, PUT, d.params())
}

// DeleteDiscount removes a discount from an account.
func (s *Session) DeleteDiscount(ctx context.Context, account, discountID string) (json.RawMessage, error) {
	params := NewParams(ParamAccount, account, "discount", discountID)
	return s.Invoke(ctx, PathAccountDiscount, DELETE, params)
}

// InvoiceAction selects what the invoice endpoint does.
type InvoiceAction string

const (
	InvoiceCreate InvoiceAction = "create"
	InvoiceSync   InvoiceAction = "sync"
	InvoiceSend   InvoiceAction = "send"
)

// CreateInvoice creates the invoice of an account for a period (YYYY-MM).
func (s *Session) CreateInvoice(ctx context.Context, account, period string) (json.RawMessage, error) {
	params := NewParams(ParamAction, string(InvoiceCreate), ParamAccount, account).
		SetIf(period != "", "period", period)
	return s.Invoke(ctx, PathAccountInvoice, POST, params)
}

// SyncInvoice pushes an invoice to the bookkeeping integration.
func (s *Session) SyncInvoice(ctx context.Context, account, invoice string) (json.RawMessage, error) {
	params := NewParams(ParamAction, string(InvoiceSync), ParamAccount, account, "invoice", invoice)
	return s.Invoke(ctx, PathAccountInvoice, POST, params)
}

// SendInvoice mails an invoice, to email when given or to the account owner.
func (s *Session) SendInvoice(ctx context.Context, account, invoice, email string) (json.RawMessage, error) {
	params := NewParams(ParamAction, string(InvoiceSend), ParamAccount, account, "invoice", invoice).
		SetIf(email != "", "email", email)
	return s.Invoke(ctx, PathAccountInvoice, POST, params)
}
