package capi

import (
	"slices"
	"strings"
)

// Endpoint paths, relative to the base URL.
const (
	PathAuthenticate       = "authenticate"
	PathAccount            = "account"
	PathAccountPrice       = "account/price"
	PathAccountDiscount    = "account/discount"
	PathAccountInvoice     = "account/invoice"
	PathAccountReminders   = "account/reminders"
	PathCompany            = "company"
	PathCompanyIntegration = "company/integration"
	PathURL                = "url"
	PathPrice              = "price"
	PathService            = "service"
	PathUserNotification   = "user/notification"
	PathUserContext        = "user/context"
	PathSSOContext         = "sso/context"
)

// Parameter names shared by several endpoints.
const (
	ParamToken    = "token"
	ParamUsername = "username"
	ParamPassword = "password"
	ParamAccount  = "account"
	ParamAction   = "action"
)

// Endpoint describes one entry of the service catalog.
type Endpoint struct {
	Path  string
	Verbs []Verb
	// Public endpoints are called without authenticating and without a token.
	Public bool
}

// Allows reports whether verb is accepted by the endpoint.
func (e Endpoint) Allows(verb Verb) bool {
	return slices.Contains(e.Verbs, verb)
}

var catalog = map[string]Endpoint{
	PathAuthenticate:       {Path: PathAuthenticate, Verbs: []Verb{POST}, Public: true},
	PathAccount:            {Path: PathAccount, Verbs: []Verb{GET, POST}},
	PathAccountPrice:       {Path: PathAccountPrice, Verbs: []Verb{POST}},
	PathAccountDiscount:    {Path: PathAccountDiscount, Verbs: []Verb{POST, PUT, DELETE}},
	PathAccountInvoice:     {Path: PathAccountInvoice, Verbs: []Verb{POST}},
	PathAccountReminders:   {Path: PathAccountReminders, Verbs: []Verb{POST}},
	PathCompany:            {Path: PathCompany, Verbs: []Verb{POST}},
	PathCompanyIntegration: {Path: PathCompanyIntegration, Verbs: []Verb{PUT}},
	PathURL:                {Path: PathURL, Verbs: []Verb{POST}, Public: true},
	PathPrice:              {Path: PathPrice, Verbs: []Verb{POST}, Public: true},
	PathService:            {Path: PathService, Verbs: []Verb{GET}},
	PathUserNotification:   {Path: PathUserNotification, Verbs: []Verb{POST}},
	PathUserContext:        {Path: PathUserContext, Verbs: []Verb{POST}},
	PathSSOContext:         {Path: PathSSOContext, Verbs: []Verb{GET, POST, DELETE}},
}

// LookupEndpoint returns the catalog entry for path. Paths outside the
// catalog are reported as not found and are treated as token protected.
func LookupEndpoint(path string) (Endpoint, bool) {
	e, ok := catalog[normalizePath(path)]
	return e, ok
}

// Endpoints returns the catalog sorted by path.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Endpoint) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func requiresToken(path string) bool {
	e, ok := LookupEndpoint(path)
	return !ok || !e.Public
}

func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// SymbolicPath turns a dotted method name such as "account.price" into the
// endpoint path "account/price". It performs plain substitution only.
func SymbolicPath(name string) string {
	return normalizePath(strings.ReplaceAll(name, ".", "/"))
}
