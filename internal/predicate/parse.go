package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

var symbolOps = map[string]Op{
	"=":  OpEq,
	"!=": OpNe,
	"<>": OpNe,
	"<":  OpLt,
	"<=": OpLe,
	">":  OpGt,
	">=": OpGe,
}

// termParser reads one term from a token stream:
//
//	term := column op integer | column BETWEEN integer AND integer
type termParser struct {
	l     *lexer
	input string
	cur   token
}

// ParseTerm parses one filter term such as `c >= 20` or
// `a BETWEEN 20 AND 30`. Column names are folded to lower case.
func ParseTerm(s string) (Predicate, error) {
	p := &termParser{l: newLexer(s), input: s}
	p.next()
	return p.parse()
}

// ParseTerms parses and conjoins several terms
func ParseTerms(terms []string) (Predicate, error) {
	var p Predicate
	for _, term := range terms {
		t, err := ParseTerm(term)
		if err != nil {
			return nil, err
		}
		p = p.And(t...)
	}
	return p, nil
}

func (p *termParser) next() {
	p.cur = p.l.nextToken()
}

func (p *termParser) parse() (Predicate, error) {
	col, err := p.expect(tokIdent, "column name")
	if err != nil {
		return nil, err
	}
	column := strings.ToLower(col.literal)

	var out Predicate
	switch p.cur.typ {
	case tokBetween:
		p.next()
		lo, err := p.value()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAnd, "AND"); err != nil {
			return nil, err
		}
		hi, err := p.value()
		if err != nil {
			return nil, err
		}
		out = Between(column, lo, hi)
	case tokOp:
		op := symbolOps[p.cur.literal]
		p.next()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = Predicate{{Column: column, Op: op, Value: v}}
	default:
		return nil, p.errorf("expected operator or BETWEEN, got %s", p.cur)
	}

	if p.cur.typ != tokEOF {
		return nil, p.errorf("unexpected %s", p.cur)
	}
	return out, nil
}

func (p *termParser) expect(typ tokenType, what string) (token, error) {
	tok := p.cur
	if tok.typ != typ {
		return tok, p.errorf("expected %s, got %s", what, tok)
	}
	p.next()
	return tok, nil
}

func (p *termParser) value() (int64, error) {
	tok, err := p.expect(tokInt, "integer")
	if err != nil {
		return 0, err
	}
	return parseValue(tok.literal)
}

func (p *termParser) errorf(format string, args ...any) error {
	return fmt.Errorf("invalid filter term %q: %s", p.input, fmt.Sprintf(format, args...))
}

func parseValue(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return v, nil
}
