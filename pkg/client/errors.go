package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a client failure.
type Kind string

const (
	KindUnauthenticated     Kind = "unauthenticated"
	KindAuthorizationDenied Kind = "authorization_denied"
	KindValidationRejected  Kind = "validation_rejected"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindUpdateFailed        Kind = "update_failed"
	KindRequestFailed       Kind = "request_failed"
	KindTransport           Kind = "transport"
)

// Error is returned by every client operation. Status is zero for failures
// detected locally or on the wire.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated, Detail: "You are not authenticated. Please log in."}
	ErrAuthorizationDenied = &Error{Kind: KindAuthorizationDenied, Detail: "Not authorized"}
	ErrValidationRejected  = &Error{Kind: KindValidationRejected, Detail: "validation failed"}
	ErrNotFound            = &Error{Kind: KindNotFound, Detail: "not found"}
	ErrConflict            = &Error{Kind: KindConflict, Detail: "conflict"}
	ErrUpdateFailed        = &Error{Kind: KindUpdateFailed, Detail: "Failed to update status."}
	ErrRequestFailed       = &Error{Kind: KindRequestFailed, Detail: "request failed"}
	ErrTransport           = &Error{Kind: KindTransport, Detail: "Network error. Please check your connection and try again."}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Message is the text to show the user.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.Detail
}

func localError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Detail: ErrTransport.Detail, Err: err}
}

// AsError extracts the client error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DetailOr returns the server detail carried by err, or fallback.
func DetailOr(err error, fallback string) string {
	if e, ok := AsError(err); ok && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  string          `json:"error"`
}

// statusError classifies a non-2xx response. The body may be the
// `{"detail": ...}` shape or anything else.
func statusError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status, Detail: parseDetail(body)}
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindAuthorizationDenied
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidationRejected
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	default:
		return KindRequestFailed
	}
}

func parseDetail(body []byte) string {
	var parsed errorBody
	if len(body) == 0 || json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if len(parsed.Detail) > 0 {
		var text string
		if json.Unmarshal(parsed.Detail, &text) == nil {
			return text
		}
		return string(parsed.Detail)
	}
	return parsed.Error
}
