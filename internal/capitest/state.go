package capitest

import (
	"fmt"
	"strconv"
	"strings"
)

// Codes used in envelopes. They mirror the public client codes but are kept
// separate so the fake never depends on the package it tests.
const (
	codeEmptyAccount     = 1
	codeInvalidAccount   = 2
	codeEmptyEmail       = 3
	codeInvalidEmail     = 4
	codeEmailExists      = 5
	codeEmptyURL         = 6
	codeInvalidURL       = 7
	codeURLExists        = 8
	codeUnavailable      = 9
	codeEmptyLogin       = 10
	codeInvalidLogin     = 11
	codeURLAvailable     = 12
	codeAccountCreated   = 13
	codeSuccess          = 14
	codeInvalidService   = 16
	codeCompanyMoved     = 18
	codeEmptyParameter   = 19
	codeInvalidParameter = 20
	codeAccountUpdated   = 22
	codeNotFound         = 404
)

// Account is an account held by the fake.
type Account struct {
	Token     string `json:"token"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Domain    string `json:"domain,omitempty"`
	Language  string `json:"language"`
	Affiliate string `json:"affiliate,omitempty"`
}

// Company is a company held by the fake.
type Company struct {
	Token        string          `json:"token"`
	Name         string          `json:"name"`
	Account      string          `json:"account"`
	Integrations map[string]bool `json:"integrations,omitempty"`
}

// Discount is a discount held by the fake.
type Discount struct {
	ID          string  `json:"discount"`
	Account     string  `json:"account"`
	Percentage  float64 `json:"percentage"`
	Months      int     `json:"months,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Invoice is an invoice held by the fake.
type Invoice struct {
	ID      string `json:"invoice"`
	Account string `json:"account"`
	Period  string `json:"period,omitempty"`
	Synced  bool   `json:"synced"`
	SentTo  string `json:"sentTo,omitempty"`
}

// SSOContext is a single sign-on context of a user.
type SSOContext struct {
	ID      string `json:"contextId"`
	Context string `json:"context"`
}

// AddAccount stores an account and returns its token. A non-empty domain
// makes the url endpoint report the domain as taken.
func (s *Server) AddAccount(a Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(a)
}

func (s *Server) addAccountLocked(a Account) string {
	s.nextID++
	a.ID = s.nextID
	if a.Token == "" {
		a.Token = s.newIDLocked("acc")
	}
	if a.Language == "" {
		a.Language = "nl"
	}
	s.accounts[a.Token] = &a
	return a.Token
}

// AddCompany stores a company under an account and returns its token.
func (s *Server) AddCompany(account, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Company{Token: s.newIDLocked("cmp"), Name: name, Account: account}
	s.companies[c.Token] = c
	return c.Token
}

// Account returns a copy of a stored account.
func (s *Server) Account(token string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[token]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// Company returns a copy of a stored company.
func (s *Server) Company(token string) (Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[token]
	if !ok {
		return Company{}, false
	}
	return *c, true
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s_%d", prefix, s.nextID)
}

func (s *Server) accountByDomainLocked(domain string) *Account {
	for _, a := range s.accounts {
		if a.Domain != "" && strings.EqualFold(a.Domain, domain) {
			return a
		}
	}
	return nil
}

func (s *Server) accountsByEmailLocked(email string) []Account {
	out := []Account{}
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			out = append(out, *a)
		}
	}
	return out
}

func str(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func boolParam(params map[string]any, key string) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func numParam(params map[string]any, key string) (float64, bool) {
	f, err := strconv.ParseFloat(str(params, key), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
