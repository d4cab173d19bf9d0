package query

import (
	"fmt"

	"tagit/internal/domain"
)

// parser is a recursive descent parser over a token slice:
//
//	Query   := OrExpr
//	OrExpr  := AndExpr ( '|' AndExpr )*
//	AndExpr := Primary ( '&' Primary )*
//	Primary := '(' OrExpr ')' | Literal
type parser struct {
	tokens []Token
	index  int
	end    int // Input length, reported as the position of end of input
}

// Parse compiles input into an expression tree
func Parse(input string) (Expr, error) {
	p := &parser{tokens: Tokenize(input), end: len(input)}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		return nil, unexpected(tok)
	}
	return expr, nil
}

func (p *parser) peek() (Token, bool) {
	if p.index >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.index], true
}

func (p *parser) next() Token {
	tok := p.tokens[p.index]
	p.index++
	return tok
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenOr {
			return left, nil
		}
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != TokenAnd {
			return left, nil
		}
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, &SyntaxError{Pos: p.end, Msg: "unexpected end of input"}
	}

	switch tok.Kind {
	case TokenLParen:
		p.next()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok {
			return nil, &SyntaxError{Pos: p.end, Msg: fmt.Sprintf("expected ')' to close '(' at position %d", tok.Pos)}
		}
		if closing.Kind != TokenRParen {
			return nil, &SyntaxError{
				Pos:   closing.Pos,
				Token: closing.Text,
				Msg:   fmt.Sprintf("expected ')' to close '(' at position %d, got %q", tok.Pos, closing.Text),
			}
		}
		p.next()
		return expr, nil

	case TokenLiteral:
		p.next()
		return Literal{Name: tok.Text}, nil

	default:
		return nil, unexpected(tok)
	}
}

func unexpected(tok Token) *SyntaxError {
	return &SyntaxError{Pos: tok.Pos, Token: tok.Text, Msg: fmt.Sprintf("unexpected token %q", tok.Text)}
}

// Query is a compiled, immutable predicate over tag sets
type Query struct {
	source string
	expr   Expr
}

// Compile parses input into a Query
func Compile(input string) (*Query, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return &Query{source: input, expr: expr}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(input string) *Query {
	q, err := Compile(input)
	if err != nil {
		panic(err)
	}
	return q
}

// Match reports whether tags satisfy the query
func (q *Query) Match(tags domain.TagSet) bool {
	return Eval(q.expr, tags)
}

// Filter returns the associations whose tags satisfy the query, in input order
func (q *Query) Filter(assocs []domain.Association) []domain.Association {
	var matched []domain.Association
	for _, a := range assocs {
		if q.Match(a.Tags) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Expr returns the parsed expression tree
func (q *Query) Expr() Expr {
	return q.expr
}

// Source returns the text the query was compiled from
func (q *Query) Source() string {
	return q.source
}

// String renders the fully parenthesised expression
func (q *Query) String() string {
	return q.expr.String()
}
