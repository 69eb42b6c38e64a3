package capitest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/celerypayroll/capi/internal/common/httpx"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func sendCode(w http.ResponseWriter, r *http.Request, code int, msg string, extra ...any) {
	result := map[string]any{"code": code, "message": msg}
	for i := 0; i+1 < len(extra); i += 2 {
		result[extra[i].(string)] = extra[i+1]
	}
	httpx.SendResult(r.Context(), w, result)
}

func sendErr(w http.ResponseWriter, r *http.Request, code int, msg string) {
	httpx.SendError(r.Context(), w, http.StatusOK, code, msg)
}

func (s *Server) checkURL(w http.ResponseWriter, r *http.Request) {
	url := strings.ToLower(strings.TrimSpace(str(requestParams(r), "url")))
	switch {
	case url == "":
		sendErr(w, r, codeEmptyURL, "Empty URL")
		return
	case !strings.Contains(url, ".") || strings.ContainsAny(url, " /"):
		sendErr(w, r, codeInvalidURL, "Invalid URL")
		return
	}
	s.mu.Lock()
	taken := s.accountByDomainLocked(url) != nil
	s.mu.Unlock()
	if taken {
		sendErr(w, r, codeURLExists, "URL already exists")
		return
	}
	sendCode(w, r, codeURLAvailable, "URL available")
}

func quote(companies, employees float64) string {
	return message.NewPrinter(language.Dutch).Sprintf("€ %.2f", 10*companies+2.5*employees)
}

func (s *Server) getPrice(w http.ResponseWriter, r *http.Request) {
	params := requestParams(r)
	companies, ok1 := numParam(params, "companies")
	employees, ok2 := numParam(params, "employees")
	if !ok1 || !ok2 || companies < 0 || employees < 0 {
		sendErr(w, r, codeInvalidParameter, "Invalid parameter")
		return
	}
	httpx.SendResult(r.Context(), w, map[string]any{"message": quote(companies, employees)})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	params := requestParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if email := str(params, "search"); email != "" {
		httpx.SendResult(r.Context(), w, s.accountsByEmailLocked(email))
		return
	}
	domain := str(params, "domain")
	if domain == "" {
		sendErr(w, r, codeEmptyParameter, "Empty parameter")
		return
	}
	a := s.accountByDomainLocked(domain)
	if a == nil {
		sendErr(w, r, codeInvalidAccount, "Invalid account")
		return
	}
	httpx.SendResult(r.Context(), w, a)
}

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	params := requestParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := str(params, "account"); token != "" {
		a, ok := s.accounts[token]
		if !ok {
			sendErr(w, r, codeInvalidAccount, "Invalid account")
			return
		}
		if v := str(params, "email"); v != "" {
			if !strings.Contains(v, "@") {
				sendErr(w, r, codeInvalidEmail, "Invalid email")
				return
			}
			a.Email = v
		}
		if v := str(params, "name"); v != "" {
			a.Name = v
		}
		if v := str(params, "language"); v != "" {
			a.Language = v
		}
		if v := str(params, "affiliate"); v != "" {
			a.Affiliate = v
		}
		sendCode(w, r, codeAccountUpdated, "Account updated")
		return
	}

	name, email := str(params, "name"), str(params, "email")
	switch {
	case name == "":
		sendErr(w, r, codeEmptyAccount, "Empty account")
		return
	case email == "":
		sendErr(w, r, codeEmptyEmail, "Empty email")
		return
	case !strings.Contains(email, "@"):
		sendErr(w, r, codeInvalidEmail, "Invalid email")
		return
	case len(s.accountsByEmailLocked(email)) > 0 && !boolParam(params, "overrideExistingUser"):
		sendErr(w, r, codeEmailExists, "Email already exists")
		return
	}
	token := s.addAccountLocked(Account{
		Name:      name,
		Email:     email,
		Language:  str(params, "language"),
		Affiliate: str(params, "affiliate"),
	})
	sendCode(w, r, codeAccountCreated, "Account created", "account", token)
}

func (s *Server) accountPrice(w http.ResponseWriter, r *http.Request) {
	token := str(requestParams(r), "account")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[token]; !ok {
		sendErr(w, r, codeInvalidAccount, "Invalid account")
		return
	}
	companies := 0
	for _, c := range s.companies {
		if c.Account == token {
			companies++
		}
	}
	httpx.SendResult(r.Context(), w, map[string]any{
		"companies": companies,
		"price":     quote(float64(companies), 0),
	})
}

// withAccount checks the account parameter before calling fn with the lock held.
func (s *Server) withAccount(w http.ResponseWriter, r *http.Request, fn func(params map[string]any, account string)) {
	params := requestParams(r)
	account := str(params, "account")
	s.mu.Lock()
	defer s.mu.Unlock()
	if account == "" {
		sendErr(w, r, codeEmptyAccount, "Empty account")
		return
	}
	if _, ok := s.accounts[account]; !ok {
		sendErr(w, r, codeInvalidAccount, "Invalid account")
		return
	}
	fn(params, account)
}

func (s *Server) addDiscount(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		pct, ok := numParam(params, "percentage")
		if !ok || pct <= 0 || pct > 100 {
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		months, _ := numParam(params, "months")
		d := &Discount{
			ID:          s.newIDLocked("disc"),
			Account:     account,
			Percentage:  pct,
			Months:      int(months),
			Description: str(params, "description"),
		}
		s.discounts[d.ID] = d
		httpx.SendResult(r.Context(), w, d)
	})
}

func (s *Server) updateDiscount(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		d, ok := s.discounts[str(params, "discount")]
		if !ok || d.Account != account {
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		if pct, ok := numParam(params, "percentage"); ok {
			d.Percentage = pct
		}
		if months, ok := numParam(params, "months"); ok {
			d.Months = int(months)
		}
		if v := str(params, "description"); v != "" {
			d.Description = v
		}
		httpx.SendResult(r.Context(), w, d)
	})
}

func (s *Server) deleteDiscount(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		id := str(params, "discount")
		d, ok := s.discounts[id]
		if !ok || d.Account != account {
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		delete(s.discounts, id)
		sendCode(w, r, codeSuccess, "Success")
	})
}

func (s *Server) invoice(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		action := str(params, "action")
		if action == "create" {
			inv := &Invoice{ID: s.newIDLocked("inv"), Account: account, Period: str(params, "period")}
			s.invoices[inv.ID] = inv
			httpx.SendResult(r.Context(), w, inv)
			return
		}
		inv, ok := s.invoices[str(params, "invoice")]
		if !ok || inv.Account != account {
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		switch action {
		case "sync":
			inv.Synced = true
		case "send":
			inv.SentTo = str(params, "email")
			if inv.SentTo == "" {
				inv.SentTo = s.accounts[account].Email
			}
		default:
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		sendCode(w, r, codeSuccess, "Success")
	})
}

func (s *Server) reminders(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		sendCode(w, r, codeSuccess, "Success", "sent", 0)
	})
}

func (s *Server) postCompany(w http.ResponseWriter, r *http.Request) {
	if str(requestParams(r), "action") == "move" {
		s.moveCompany(w, r)
		return
	}
	s.withAccount(w, r, func(params map[string]any, account string) {
		name := str(params, "name")
		if name == "" {
			sendErr(w, r, codeEmptyParameter, "Empty parameter")
			return
		}
		c := &Company{Token: s.newIDLocked("cmp"), Name: name, Account: account}
		s.companies[c.Token] = c
		httpx.SendResult(r.Context(), w, c)
	})
}

func (s *Server) moveCompany(w http.ResponseWriter, r *http.Request) {
	s.withAccount(w, r, func(params map[string]any, account string) {
		c, ok := s.companies[str(params, "company")]
		if !ok {
			sendErr(w, r, codeInvalidParameter, "Invalid parameter")
			return
		}
		c.Account = account
		sendCode(w, r, codeCompanyMoved, "Company moved")
	})
}

func (s *Server) companyIntegration(w http.ResponseWriter, r *http.Request) {
	params := requestParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[str(params, "company")]
	if !ok {
		sendErr(w, r, codeInvalidParameter, "Invalid parameter")
		return
	}
	integration := str(params, "integration")
	if integration == "" {
		sendErr(w, r, codeEmptyParameter, "Empty parameter")
		return
	}
	if c.Integrations == nil {
		c.Integrations = make(map[string]bool)
	}
	c.Integrations[integration] = boolParam(params, "enabled")
	sendCode(w, r, codeSuccess, "Success")
}

var serviceList = []string{"payroll", "hr", "timesheets"}

func (s *Server) services(w http.ResponseWriter, r *http.Request) {
	httpx.SendResult(r.Context(), w, serviceList)
}

func requireParams(w http.ResponseWriter, r *http.Request, keys ...string) (map[string]any, bool) {
	params := requestParams(r)
	for _, k := range keys {
		if str(params, k) == "" {
			sendErr(w, r, codeEmptyParameter, "Empty parameter")
			return nil, false
		}
	}
	return params, true
}

func (s *Server) notify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireParams(w, r, "user", "subject", "message"); !ok {
		return
	}
	sendCode(w, r, codeSuccess, "Success")
}

func (s *Server) userContext(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireParams(w, r, "user", "context"); !ok {
		return
	}
	sendCode(w, r, codeSuccess, "Success")
}

func (s *Server) getSSOContext(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "user")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]SSOContext{}, s.contexts[str(params, "user")]...)
	httpx.SendResult(r.Context(), w, out)
}

func (s *Server) createSSOContext(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "user", "context")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := str(params, "user")
	c := SSOContext{ID: s.newIDLocked("ctx"), Context: str(params, "context")}
	s.contexts[user] = append(s.contexts[user], c)
	httpx.SendResult(r.Context(), w, c)
}

func (s *Server) deleteSSOContext(w http.ResponseWriter, r *http.Request) {
	params, ok := requireParams(w, r, "user")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, id := str(params, "user"), str(params, "contextId")
	if id == "" {
		delete(s.contexts, user)
		sendCode(w, r, codeSuccess, "Success")
		return
	}
	before := len(s.contexts[user])
	s.contexts[user] = slices.DeleteFunc(s.contexts[user], func(c SSOContext) bool { return c.ID == id })
	if len(s.contexts[user]) == before {
		sendErr(w, r, codeNotFound, "Not found")
		return
	}
	sendCode(w, r, codeSuccess, "Success")
}
