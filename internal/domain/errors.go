package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindConfiguration Kind = "CONFIGURATION"
	KindBadRequest    Kind = "BAD_REQUEST"
	KindConflict      Kind = "CONFLICT"
	KindGateway       Kind = "GATEWAY"
	KindInternal      Kind = "INTERNAL"
)

// Error is the error surfaced to callers of the application services.
// Status is the HTTP status the error maps to; Detail is human readable.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(detail string, err error) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Detail: detail, Err: err}
}

func Configuration(detail string) *Error {
	return &Error{Kind: KindConfiguration, Status: http.StatusInternalServerError, Detail: detail}
}

func BadRequest(detail string, err error) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Detail: detail, Err: err}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Detail: detail}
}

// Gateway wraps a failed upstream call. status is the upstream HTTP status
// when there was one, otherwise a 5xx chosen by the caller.
func Gateway(status int, detail string, err error) *Error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindGateway, Status: status, Detail: detail, Err: err}
}

func Internal(detail string, err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Detail: detail, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// UpstreamError is returned by provider clients when the provider call
// itself failed. Status is the upstream HTTP status, or a gateway status
// chosen by the client for transport failures.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: upstream %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: upstream %d: %s", e.Service, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
