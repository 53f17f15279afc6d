package predicate

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokIllegal tokenType = iota
	tokEOF
	tokIdent
	tokInt
	tokBetween
	tokAnd
	tokOp
)

type token struct {
	typ     tokenType
	literal string
	column  int
}

func (t token) String() string {
	switch t.typ {
	case tokEOF:
		return "end of term"
	case tokIllegal:
		return fmt.Sprintf("illegal character %q at col %d", t.literal, t.column)
	}
	return fmt.Sprintf("%q at col %d", t.literal, t.column)
}

type lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	column       int
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *lexer) nextToken() token {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}

	tok := token{column: l.column}
	switch {
	case l.ch == 0:
		tok.typ = tokEOF
		return tok
	case isLetter(l.ch):
		start := l.position
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		tok.literal = l.input[start:l.position]
		tok.typ = lookupKeyword(tok.literal)
		return tok
	case isDigit(l.ch) || l.ch == '-' && isDigit(l.peekChar()):
		start := l.position
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		tok.typ = tokInt
		tok.literal = l.input[start:l.position]
		return tok
	case l.ch == '=':
		tok.typ, tok.literal = tokOp, "="
	case l.ch == '<' || l.ch == '>' || l.ch == '!':
		first := l.ch
		switch next := l.peekChar(); {
		case next == '=', first == '<' && next == '>':
			l.readChar()
			tok.typ, tok.literal = tokOp, string([]byte{first, next})
		case first == '!':
			tok.typ, tok.literal = tokIllegal, "!"
		default:
			tok.typ, tok.literal = tokOp, string(first)
		}
	default:
		tok.typ, tok.literal = tokIllegal, string(l.ch)
	}
	l.readChar()
	return tok
}

var keywords = map[string]tokenType{
	"BETWEEN": tokBetween,
	"AND":     tokAnd,
}

func lookupKeyword(ident string) tokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return tokIdent
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
