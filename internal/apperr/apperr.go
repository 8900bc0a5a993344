package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

type Kind string

const (
	Validation        Kind = "validation"
	DomainRange       Kind = "domain_range"
	Duplicate         Kind = "duplicate"
	Settlement        Kind = "settlement"
	IllegalTransition Kind = "illegal_transition"
	NotFound          Kind = "not_found"
	Internal          Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string   // safe to show to the caller
	Details []string // ordered individual failures, if any
	Err     error    // underlying cause, for logs
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationErr aggregates individual failures; Message is the
// semicolon-joined list.
func ValidationErr(details []string) *Error {
	return &Error{Kind: Validation, Message: strings.Join(details, "; "), Details: details}
}

func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns Internal for errors that carry no kind.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation, DomainRange:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Duplicate, IllegalTransition:
		return http.StatusConflict
	case Settlement:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case Validation, DomainRange:
		return codes.InvalidArgument
	case NotFound:
		return codes.NotFound
	case Duplicate:
		return codes.AlreadyExists
	case IllegalTransition:
		return codes.FailedPrecondition
	case Settlement:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// PublicMessage hides internal causes from callers.
func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.Kind != Internal && ae.Message != "" {
		return ae.Message
	}
	return "An unexpected error occurred"
}
