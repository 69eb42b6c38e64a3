// Package apperrors provides a chainable error type. Errors derived from a root
// error stay matchable against it with errors.Is, can carry the errors that
// caused them, an HTTP status code, and string fields for structured logging.
package apperrors

// Error defines the interface for application errors. All methods that return
// Error produce a new value; the receiver is never mutated.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // new error of the same kind with a different message
	Msg(msg string) Error                  // new message, keeps the causes of the current error
	MsgErr(msg string, err ...error) Error // new message and additional causes
	Err(err ...error) Error                // same message, additional causes
	With(key, value string) Error          // attaches a logging field
	Fields() map[string]string             // logging fields, nil if none
	SetStatusCode(int) Error               // HTTP status observed when the error occurred
	StatusCode() int                       // 0 when unknown
	Prefix(string) Error                   // prefixes the message
	ErrorAll() string                      // message followed by the messages of all causes
	UnwrapAll() []error                    // causes in the order they were attached
}
