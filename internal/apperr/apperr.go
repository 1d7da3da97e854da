package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the API layer can map it to a status code
// without inspecting messages.
type Kind int

const (
	Internal Kind = iota
	Validation
	Extraction
	UnsupportedType
	InvalidQuizFormat
	NotFound
	Conflict
	Upstream
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Extraction:
		return "extraction"
	case UnsupportedType:
		return "unsupported_type"
	case InvalidQuizFormat:
		return "invalid_quiz_format"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Upstream:
		return "upstream"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to the response status used by the façade.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, Extraction, UnsupportedType, Conflict:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type crossing component boundaries. Message is safe to
// return to clients; Err carries the underlying cause, Raw the unparseable
// model output when Kind is InvalidQuizFormat.
type Error struct {
	Kind    Kind
	Message string
	Raw     string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// From returns err as an *Error, wrapping unknown errors as Internal so the
// façade always has a Kind to map.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// KindOf reports the Kind of err, Internal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is allows errors.Is comparisons against sentinel *Error values by Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}
