package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenIterator yields tokens and lexical errors lazily.
type TokenIterator iter.Seq2[Token, error]

// SqlTokenizer is a tokenizer that returns an iterator
type SqlTokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
	SkipComments   bool
}

// NewSqlTokenizer creates a new SqlTokenizer
func NewSqlTokenizer(input string, options ...TokenizerOptions) *SqlTokenizer {
	opts := TokenizerOptions{}
	if len(options) > 0 {
		opts = options[0]
	}

	return &SqlTokenizer{
		input:   input,
		options: opts,
	}
}

// Tokens returns an iterator of tokens
func (t *SqlTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:    t.input,
			position: 0,
			line:     1,
			column:   1,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if t.options.SkipComments && (token.Type == LINE_COMMENT || token.Type == BLOCK_COMMENT) {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice
func (t *SqlTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 64)

	for token, err := range t.Tokens() {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == EOF {
			break
		}
	}

	return tokens, nil
}

// Internal tokenizer implementation
type tokenizer struct {
	input    string
	position int // byte offset just past current
	width    int // byte width of current
	line     int
	column   int
	current  rune
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	switch t.current {
	case 0:
		return t.newToken(EOF, ""), nil
	case ' ', '\t', '\r', '\n':
		return t.readWhitespace(), nil
	case '(':
		return t.singleChar(OPENED_PARENS), nil
	case ')':
		return t.singleChar(CLOSED_PARENS), nil
	case ',':
		return t.singleChar(COMMA), nil
	case ';':
		return t.singleChar(SEMICOLON), nil
	case '.':
		return t.singleChar(DOT), nil
	case '?':
		return t.singleChar(PARAM), nil
	case '@':
		return t.readNamedParam()
	case '\'':
		return t.readString()
	case '"':
		return t.readQuotedIdent()
	case '-':
		if t.peekChar() == '-' {
			return t.readLineComment(), nil
		}

		return t.singleChar(MINUS), nil
	case '/':
		if t.peekChar() == '*' {
			return t.readBlockComment()
		}

		return t.singleChar(DIVIDE), nil
	case '=':
		return t.singleChar(EQUAL), nil
	case '<':
		if t.peekChar() == '=' {
			return t.doubleChar(LESS_EQUAL, "<="), nil
		} else if t.peekChar() == '>' {
			return t.doubleChar(NOT_EQUAL, "<>"), nil
		}

		return t.singleChar(LESS_THAN), nil
	case '>':
		if t.peekChar() == '=' {
			return t.doubleChar(GREATER_EQUAL, ">="), nil
		}

		return t.singleChar(GREATER_THAN), nil
	case '!':
		if t.peekChar() == '=' {
			return t.doubleChar(NOT_EQUAL, "!="), nil
		}

		return Token{}, fmt.Errorf("%w: '!' at line %d, column %d", ErrUnexpectedCharacter, t.line, t.column-1)
	case '|':
		if t.peekChar() == '|' {
			return t.doubleChar(CONCAT, "||"), nil
		}

		return Token{}, fmt.Errorf("%w: '|' at line %d, column %d", ErrUnexpectedCharacter, t.line, t.column-1)
	case '+':
		return t.singleChar(PLUS), nil
	case '*':
		return t.singleChar(MULTIPLY), nil
	default:
		if unicode.IsLetter(t.current) || t.current == '_' {
			return t.readWord(), nil
		} else if unicode.IsDigit(t.current) {
			return t.readNumber()
		}

		return Token{}, fmt.Errorf("%w: %q at line %d, column %d", ErrUnexpectedCharacter, t.current, t.line, t.column-1)
	}
}

// readChar decodes the next rune. Lines and columns count runes, offsets count bytes.
func (t *tokenizer) readChar() {
	if t.position >= len(t.input) {
		t.current = 0
		t.width = 0
		t.position++

		return
	}

	t.current, t.width = utf8.DecodeRuneInString(t.input[t.position:])
	t.position += t.width

	if t.current == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}
}

// peekChar looks ahead at the next rune
func (t *tokenizer) peekChar() rune {
	if t.position >= len(t.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(t.input[t.position:])

	return r
}

func (t *tokenizer) startPosition() Position {
	return Position{
		Line:   t.line,
		Column: t.column - 1,
		Offset: t.position - t.width,
	}
}

func (t *tokenizer) singleChar(tokenType TokenType) Token {
	token := t.newToken(tokenType, string(t.current))
	t.readChar()

	return token
}

func (t *tokenizer) doubleChar(tokenType TokenType, value string) Token {
	pos := t.startPosition()

	t.readChar()
	t.readChar()

	return Token{Type: tokenType, Value: value, Position: pos}
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	var builder strings.Builder

	pos := t.startPosition()

	for unicode.IsSpace(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: WHITESPACE, Value: builder.String(), Position: pos}
}

// readWord reads identifiers and keywords
func (t *tokenizer) readWord() Token {
	var builder strings.Builder

	pos := t.startPosition()

	for unicode.IsLetter(t.current) || unicode.IsDigit(t.current) || t.current == '_' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	word := builder.String()

	if tokenType, ok := keywordTypes[strings.ToUpper(word)]; ok {
		return Token{Type: tokenType, Value: strings.ToUpper(word), Position: pos}
	}

	return Token{Type: WORD, Value: word, Position: pos}
}

// readNamedParam reads an @name placeholder
func (t *tokenizer) readNamedParam() (Token, error) {
	var builder strings.Builder

	pos := t.startPosition()

	t.readChar() // consume '@'

	for unicode.IsLetter(t.current) || unicode.IsDigit(t.current) || t.current == '_' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	if builder.Len() == 0 {
		return Token{}, fmt.Errorf("%w at line %d, column %d", ErrEmptyParameterName, pos.Line, pos.Column)
	}

	return Token{Type: NAMED_PARAM, Value: builder.String(), Position: pos}, nil
}

// readString reads single-quoted string literals. Doubled quotes escape.
func (t *tokenizer) readString() (Token, error) {
	var builder strings.Builder

	pos := t.startPosition()

	t.readChar() // consume opening quote

	for {
		if t.current == 0 {
			return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedString, pos.Line, pos.Column)
		}

		if t.current == '\'' {
			if t.peekChar() == '\'' {
				builder.WriteRune('\'')
				t.readChar()
				t.readChar()

				continue
			}

			t.readChar() // consume closing quote

			break
		}

		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: STRING, Value: builder.String(), Position: pos}, nil
}

// readQuotedIdent reads double-quoted identifiers
func (t *tokenizer) readQuotedIdent() (Token, error) {
	var builder strings.Builder

	pos := t.startPosition()

	t.readChar() // consume opening quote

	for t.current != 0 && t.current != '"' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == 0 {
		return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedQuotedIdent, pos.Line, pos.Column)
	}

	t.readChar() // consume closing quote

	return Token{Type: QUOTED_WORD, Value: builder.String(), Position: pos}, nil
}

// readNumber reads numeric literals
func (t *tokenizer) readNumber() (Token, error) {
	var builder strings.Builder

	pos := t.startPosition()

	for unicode.IsDigit(t.current) {
		builder.WriteRune(t.current)
		t.readChar()
	}

	if t.current == '.' && unicode.IsDigit(t.peekChar()) {
		builder.WriteRune(t.current)
		t.readChar()

		for unicode.IsDigit(t.current) {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	if t.current == 'e' || t.current == 'E' {
		builder.WriteRune(t.current)
		t.readChar()

		if t.current == '+' || t.current == '-' {
			builder.WriteRune(t.current)
			t.readChar()
		}

		if !unicode.IsDigit(t.current) {
			return Token{}, fmt.Errorf("%w: invalid exponent at line %d, column %d", ErrInvalidNumber, pos.Line, pos.Column)
		}

		for unicode.IsDigit(t.current) {
			builder.WriteRune(t.current)
			t.readChar()
		}
	}

	return Token{Type: NUMBER, Value: builder.String(), Position: pos}, nil
}

// readLineComment reads -- line comments
func (t *tokenizer) readLineComment() Token {
	var builder strings.Builder

	pos := t.startPosition()

	for t.current != 0 && t.current != '\n' {
		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{Type: LINE_COMMENT, Value: builder.String(), Position: pos}
}

// readBlockComment reads /* */ block comments
func (t *tokenizer) readBlockComment() (Token, error) {
	var builder strings.Builder

	pos := t.startPosition()

	builder.WriteRune(t.current)
	t.readChar()
	builder.WriteRune(t.current)
	t.readChar()

	for t.current != 0 {
		if t.current == '*' && t.peekChar() == '/' {
			builder.WriteRune(t.current)
			t.readChar()
			builder.WriteRune(t.current)
			t.readChar()

			return Token{Type: BLOCK_COMMENT, Value: builder.String(), Position: pos}, nil
		}

		builder.WriteRune(t.current)
		t.readChar()
	}

	return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedComment, pos.Line, pos.Column)
}

// newToken creates a new token at the current position
func (t *tokenizer) newToken(tokenType TokenType, value string) Token {
	return Token{
		Type:  tokenType,
		Value: value,
		Position: Position{
			Line:   t.line,
			Column: t.column - len([]rune(value)),
			Offset: t.position - len(value),
		},
	}
}
