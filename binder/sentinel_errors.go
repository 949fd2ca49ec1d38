package binder

import "errors"

// Sentinel errors for semantic validation. All detectable instances are
// collected into one failure rather than stopping at the first.
var (
	ErrUnknownTable            = errors.New("unknown table")
	ErrUnknownColumn           = errors.New("unknown column")
	ErrAmbiguousColumn         = errors.New("ambiguous column")
	ErrDuplicateTableAlias     = errors.New("duplicate table alias")
	ErrTypeMismatch            = errors.New("type mismatch")
	ErrParameterTypeConflict   = errors.New("parameter type conflict")
	ErrUnresolvedParameterType = errors.New("unresolved parameter type")
	ErrInvalidNumericLiteral   = errors.New("invalid numeric literal")
	ErrConditionNotBoolean     = errors.New("condition must evaluate to boolean")
)
