// Package api is the HTTP adapter for the guIA REST API.
//
// Every call sends JSON, carries the current bearer token when one is held
// and tags the request with an X-Request-ID. Successful responses are
// unwrapped from the {data, message} envelope. Failures come back as *Error,
// which wraps one of the sentinel errors so callers can use errors.Is:
//
//	ErrUnavailable   no response, or 502/503/504
//	ErrUnauthorized  401 or 403
//	ErrNotFound      404
//
// A 401 also invokes the unauthorized handler bound with
// SetUnauthorizedHandler, whichever call received it. The auth manager uses
// this hook to drop an expired session.
package api
