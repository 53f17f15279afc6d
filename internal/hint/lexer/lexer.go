package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // table_name, index_name, "Quoted Name"

	// Keywords
	FORCE_INDEX
	ASC
	DESC

	// Punctuation
	AT          // @
	BRACE_OPEN  // {
	BRACE_CLOSE // }
	EQUALS      // =
	COMMA       // ,
)

var keywords = map[string]TokenType{
	"FORCE_INDEX": FORCE_INDEX,
	"ASC":         ASC,
	"DESC":        DESC,
}

var names = map[TokenType]string{
	ILLEGAL:     "ILLEGAL",
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	FORCE_INDEX: "FORCE_INDEX",
	ASC:         "ASC",
	DESC:        "DESC",
	AT:          "@",
	BRACE_OPEN:  "{",
	BRACE_CLOSE: "}",
	EQUALS:      "=",
	COMMA:       ",",
}

func (t TokenType) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool // identifier was written in double quotes
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Column = l.column

	switch l.ch {
	case '@':
		tok = newToken(AT, l.ch, l.column)
	case '{':
		tok = newToken(BRACE_OPEN, l.ch, l.column)
	case '}':
		tok = newToken(BRACE_CLOSE, l.ch, l.column)
	case '=':
		tok = newToken(EQUALS, l.ch, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.column)
	case '"':
		lit, ok := l.readQuoted()
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = lit
			return tok
		}
		tok.Type = IDENTIFIER
		tok.Literal = lit
		tok.Quoted = true
		return tok
	case 0:
		tok.Literal = ""
		tok.Type = EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		tok = newToken(ILLEGAL, l.ch, l.column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readQuoted reads a double-quoted identifier. A doubled quote inside the
// identifier stands for one quote character.
func (l *Lexer) readQuoted() (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), false
		case '"':
			if l.readPosition < len(l.input) && l.input[l.readPosition] == '"' {
				l.readChar()
				sb.WriteByte('"')
				continue
			}
			l.readChar()
			return sb.String(), true
		default:
			sb.WriteByte(l.ch)
		}
	}
}

func newToken(tokenType TokenType, ch byte, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Column: col}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize lexes the whole input, stopping at the first illegal token
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("illegal token at col %d: %s", tok.Column, tok.Literal)
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens, nil
}
