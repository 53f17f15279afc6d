package hint

import (
	"fmt"
	"strings"

	dberrors "github.com/leengari/idxscan/internal/domain/errors"
	"github.com/leengari/idxscan/internal/hint/lexer"
)

// Parse parses a table reference with an optional index hint.
// Unquoted identifiers are folded to lower case.
func Parse(input string) (TableRef, error) {
	l := lexer.New(input)
	p := &parser{input: input, l: l}
	p.advance()
	return p.parseTableRef()
}

type parser struct {
	input string
	l     *lexer.Lexer
	cur   lexer.Token
}

func (p *parser) advance() {
	p.cur = p.l.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &dberrors.HintSyntaxError{
		Input:  p.input,
		Pos:    p.cur.Column,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (p *parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := p.cur
	if tok.Type != tt {
		if tok.Type == lexer.ILLEGAL {
			return tok, p.errorf("unexpected character %q", tok.Literal)
		}
		return tok, p.errorf("expected %s, got %s", tt, describe(tok))
	}
	p.advance()
	return tok, nil
}

func (p *parser) identifier(what string) (string, error) {
	tok := p.cur
	if tok.Type != lexer.IDENTIFIER {
		return "", p.errorf("expected %s name, got %s", what, describe(tok))
	}
	p.advance()
	if tok.Quoted {
		if tok.Literal == "" {
			return "", &dberrors.HintSyntaxError{Input: p.input, Pos: tok.Column, Reason: "empty quoted identifier"}
		}
		return tok.Literal, nil
	}
	return strings.ToLower(tok.Literal), nil
}

func (p *parser) parseTableRef() (TableRef, error) {
	table, err := p.identifier("table")
	if err != nil {
		return TableRef{}, err
	}
	ref := TableRef{Table: table, Hint: NoHint{}}

	if p.cur.Type == lexer.AT {
		p.advance()
		h, err := p.parseHint()
		if err != nil {
			return TableRef{}, err
		}
		ref.Hint = h
	}

	if _, err := p.expect(lexer.EOF); err != nil {
		return TableRef{}, err
	}
	return ref, nil
}

func (p *parser) parseHint() (Hint, error) {
	if p.cur.Type != lexer.BRACE_OPEN {
		name, err := p.identifier("index")
		if err != nil {
			return nil, err
		}
		return ByName{Index: name}, nil
	}
	p.advance()

	if _, err := p.expect(lexer.FORCE_INDEX); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS); err != nil {
		return nil, err
	}
	name, err := p.identifier("index")
	if err != nil {
		return nil, err
	}
	h := Detailed{Index: name}

	if p.cur.Type == lexer.COMMA {
		p.advance()
		switch p.cur.Type {
		case lexer.ASC:
			h.Order = OrderAsc
		case lexer.DESC:
			h.Order = OrderDesc
		default:
			return nil, p.errorf("expected ASC or DESC, got %s", describe(p.cur))
		}
		p.advance()
	}

	if _, err := p.expect(lexer.BRACE_CLOSE); err != nil {
		return nil, err
	}
	return h, nil
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.IDENTIFIER:
		return fmt.Sprintf("identifier %q", tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}
