package services

import "strings"

type Kind int

const (
	KindValidation Kind = iota + 1
	KindDuplicateEmail
	KindNotFound
	KindInvalidID
	KindInvalidCredentials
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindNotFound:
		return "not_found"
	case KindInvalidID:
		return "invalid_id"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// FieldError is one failed input constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a domain failure with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

// Is matches the bare sentinels below by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidID          = &Error{Kind: KindInvalidID}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
