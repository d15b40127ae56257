package requestBuilder

import (
	"errors"
	"fmt"
)

type Kind int

const (
	MissingSymbol Kind = iota + 1
	MissingInterval
	MissingVarMethod
	InvalidNumber
	OutOfRange
)

func (k Kind) String() string {
	switch k {
	case MissingSymbol:
		return "missing symbol"
	case MissingInterval:
		return "missing interval"
	case MissingVarMethod:
		return "missing value-at-risk method"
	case InvalidNumber:
		return "invalid number"
	case OutOfRange:
		return "value out of range"
	default:
		return "unknown validation error"
	}
}

type ValidationError struct {
	Kind  Kind
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s = %q", e.Kind, e.Field, e.Value)
}

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, ErrMissingInterval).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

var (
	ErrMissingSymbol    = &ValidationError{Kind: MissingSymbol}
	ErrMissingInterval  = &ValidationError{Kind: MissingInterval}
	ErrMissingVarMethod = &ValidationError{Kind: MissingVarMethod}
	ErrInvalidNumber    = &ValidationError{Kind: InvalidNumber}
	ErrOutOfRange       = &ValidationError{Kind: OutOfRange}
)

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
