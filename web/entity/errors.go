package entity

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind classifies a failure by who has to act on it.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuth
	KindOwnership
	KindThrottle
	KindNotFoundOrMalformed
	KindStore
	KindHash
	KindInternal
)

var kindNames = map[ErrorKind]string{
	KindValidation:          "validation",
	KindAuth:                "auth",
	KindOwnership:           "ownership",
	KindThrottle:            "throttle",
	KindNotFoundOrMalformed: "not found or malformed",
	KindStore:               "store",
	KindHash:                "hash",
	KindInternal:            "internal",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the HTTP status reported for errors of this kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation, KindNotFoundOrMalformed:
		return http.StatusBadRequest
	case KindAuth, KindOwnership, KindThrottle:
		return http.StatusForbidden
	case KindHash:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Key is the message id shown to the client;
// Params are "name==value" template pairs for that message. Err is the
// underlying cause and is only logged.
type Error struct {
	Kind   ErrorKind
	Key    string
	Params []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Key)
	if len(e.Params) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Params, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error without an underlying cause.
func NewError(kind ErrorKind, key string, params ...string) *Error {
	return &Error{Kind: kind, Key: key, Params: params}
}

// WrapError builds an Error around cause.
func WrapError(kind ErrorKind, key string, cause error) *Error {
	return &Error{Kind: kind, Key: key, Err: cause}
}

// AsError extracts an *Error from err, classifying anything else as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(KindInternal, "errors.internal", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
