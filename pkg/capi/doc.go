// Package capi is a client for the Celery payroll account management API.
//
// A Session holds credentials and lazily exchanges them for a token on the
// first call that needs one. Every response body is an envelope of the form
//
//	{"response": {"result": ...}}
//	{"response": {"error": {"code": 8, "message": "URL already exists"}}}
//
// Success payloads are returned to the caller; error branches are returned as
// *APIError. Failures are classified as ErrTransport, ErrMalformedResponse,
// ErrInvalidEnvelope, ErrAPI or ErrTokenExtraction:
//
//	s := capi.NewSession(capi.Credentials{Username: "user", Password: "secret"})
//	ok, err := s.CheckURL(ctx, "example.com")
//	if capi.IsCode(err, capi.CodeURLExists) {
//		// taken
//	}
package capi
