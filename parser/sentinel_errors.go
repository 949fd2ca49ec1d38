package parser

import (
	"errors"
	"fmt"

	"github.com/querylint/querylint/tokenizer"
)

// Sentinel errors
var (
	ErrEmptyInput             = errors.New("query text cannot be empty")
	ErrMixedPlaceholderStyles = errors.New("positional (?) and named (@name) placeholders cannot be mixed in one statement")
)

// SyntaxError reports malformed SQL text with the offending position.
type SyntaxError struct {
	Position tokenizer.Position
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Position.Line, e.Position.Column, e.Message)
}

func syntaxErrorf(pos tokenizer.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Position: pos, Message: fmt.Sprintf(format, args...)}
}
