package tokenizer

import (
	"errors"
	"strings"
)

// Sentinel errors
var (
	ErrUnterminatedString      = errors.New("unterminated string literal")
	ErrUnterminatedQuotedIdent = errors.New("unterminated quoted identifier")
	ErrUnterminatedComment     = errors.New("unterminated block comment")
	ErrInvalidNumber           = errors.New("invalid number format")
	ErrEmptyParameterName      = errors.New("named placeholder requires a name")
	ErrUnexpectedCharacter     = errors.New("unexpected character")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	WORD         // unreserved identifiers
	QUOTED_WORD  // "quoted" identifiers
	STRING       // 'string' literals
	NUMBER       // numeric literals
	OPENED_PARENS
	CLOSED_PARENS
	COMMA
	SEMICOLON
	DOT

	// Operators
	EQUAL         // =
	NOT_EQUAL     // <>, !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	PLUS          // +
	MINUS         // -
	MULTIPLY      // *
	DIVIDE        // /
	CONCAT        // ||

	// Placeholders
	PARAM       // ? positional placeholder
	NAMED_PARAM // @name placeholder

	// Keywords of the supported subset
	SELECT
	FROM
	WHERE
	AS
	JOIN
	INNER
	LEFT
	RIGHT
	FULL
	OUTER
	ON
	AND
	OR
	NOT
	IN
	LIKE
	IS
	NULL
	BETWEEN
	TRUE
	FALSE

	// Comments
	LINE_COMMENT  // -- line comment
	BLOCK_COMMENT // /* block comment */

	// Others
	OTHER
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", WHITESPACE: "WHITESPACE", WORD: "WORD", QUOTED_WORD: "QUOTED_WORD",
	STRING: "STRING", NUMBER: "NUMBER", OPENED_PARENS: "OPENED_PARENS",
	CLOSED_PARENS: "CLOSED_PARENS", COMMA: "COMMA", SEMICOLON: "SEMICOLON", DOT: "DOT",
	EQUAL: "EQUAL", NOT_EQUAL: "NOT_EQUAL", LESS_THAN: "LESS_THAN",
	GREATER_THAN: "GREATER_THAN", LESS_EQUAL: "LESS_EQUAL", GREATER_EQUAL: "GREATER_EQUAL",
	PLUS: "PLUS", MINUS: "MINUS", MULTIPLY: "MULTIPLY", DIVIDE: "DIVIDE", CONCAT: "CONCAT",
	PARAM: "PARAM", NAMED_PARAM: "NAMED_PARAM",
	SELECT: "SELECT", FROM: "FROM", WHERE: "WHERE", AS: "AS", JOIN: "JOIN",
	INNER: "INNER", LEFT: "LEFT", RIGHT: "RIGHT", FULL: "FULL", OUTER: "OUTER",
	ON: "ON", AND: "AND", OR: "OR", NOT: "NOT", IN: "IN", LIKE: "LIKE", IS: "IS",
	NULL: "NULL", BETWEEN: "BETWEEN", TRUE: "TRUE", FALSE: "FALSE",
	LINE_COMMENT: "LINE_COMMENT", BLOCK_COMMENT: "BLOCK_COMMENT", OTHER: "OTHER",
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}

// keywordTypes maps upper-case keywords of the supported subset to token types.
var keywordTypes = map[string]TokenType{
	"SELECT": SELECT, "FROM": FROM, "WHERE": WHERE, "AS": AS, "JOIN": JOIN,
	"INNER": INNER, "LEFT": LEFT, "RIGHT": RIGHT, "FULL": FULL, "OUTER": OUTER,
	"ON": ON, "AND": AND, "OR": OR, "NOT": NOT, "IN": IN, "LIKE": LIKE, "IS": IS,
	"NULL": NULL, "BETWEEN": BETWEEN, "TRUE": TRUE, "FALSE": FALSE,
}

// IsReservedWord reports whether a word would lex as a keyword rather
// than as a plain identifier. Formatters quote such identifiers.
func IsReservedWord(word string) bool {
	_, ok := keywordTypes[strings.ToUpper(word)]
	return ok
}

// Position represents a position in the source text
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token represents a token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}

// IsKeyword reports whether the token is one of the reserved keywords.
func (t Token) IsKeyword() bool {
	return t.Type >= SELECT && t.Type <= FALSE
}
