package apperrors

import (
	"errors"
	"maps"
	"strings"
)

type appError struct {
	msg        string
	base       error
	causes     []error
	statusCode int
	prefix     string
	fields     map[string]string
}

// New creates a root error with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	if e.prefix != "" {
		return e.prefix + ": " + e.msg
	}
	return e.msg
}

func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.causes {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.causes
}

func (e *appError) derive(msg string, causes []error) *appError {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     causes,
		statusCode: e.statusCode,
		fields:     maps.Clone(e.fields),
	}
}

func (e *appError) New(msg string) Error {
	return e.derive(msg, nil)
}

func (e *appError) Msg(msg string) Error {
	return e.derive(msg, append([]error(nil), e.causes...))
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return e.derive(msg, appendCauses(e.causes, errs))
}

func (e *appError) Err(errs ...error) Error {
	cp := e.clone()
	cp.causes = appendCauses(e.causes, errs)
	return cp
}

// clone returns a copy that unwraps to e, so the copy stays matchable
// against everything e matches.
func (e *appError) clone() *appError {
	cp := e.derive(e.msg, append([]error(nil), e.causes...))
	cp.prefix = e.prefix
	return cp
}

func (e *appError) With(key, value string) Error {
	cp := e.clone()
	if cp.fields == nil {
		cp.fields = make(map[string]string, 1)
	}
	cp.fields[key] = value
	return cp
}

func (e *appError) Fields() map[string]string {
	return e.fields
}

func (e *appError) SetStatusCode(code int) Error {
	cp := e.clone()
	cp.statusCode = code
	return cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

func (e *appError) Prefix(p string) Error {
	cp := e.clone()
	cp.prefix = p
	return cp
}

// Is matches the target against the chain of bases and every attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if e == target {
		return true
	}
	if e.base != nil && errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As lets errors.As reach typed causes, which are not on the Unwrap chain.
func (e *appError) As(target any) bool {
	for _, err := range e.causes {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}

func appendCauses(existing []error, errs []error) []error {
	out := make([]error, 0, len(existing)+len(errs))
	out = append(out, existing...)
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
