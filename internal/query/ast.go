package query

import (
	"fmt"

	"tagit/internal/domain"
)

// Expr is a compiled query expression.
// The set of implementations is closed: Literal, And and Or.
type Expr interface {
	fmt.Stringer
	expr()
}

// Literal matches a tag set containing Name exactly
type Literal struct {
	Name string
}

// And matches when both sides match
type And struct {
	Left, Right Expr
}

// Or matches when either side matches
type Or struct {
	Left, Right Expr
}

func (Literal) expr() {}
func (And) expr()     {}
func (Or) expr()      {}

func (l Literal) String() string {
	return l.Name
}

func (a And) String() string {
	return fmt.Sprintf("(%s & %s)", a.Left, a.Right)
}

func (o Or) String() string {
	return fmt.Sprintf("(%s | %s)", o.Left, o.Right)
}

// Eval evaluates e against tags.
// Both sides of And/Or are always evaluated.
func Eval(e Expr, tags domain.TagSet) bool {
	switch e := e.(type) {
	case Literal:
		return tags.Contains(e.Name)
	case And:
		left := Eval(e.Left, tags)
		right := Eval(e.Right, tags)
		return left && right
	case Or:
		left := Eval(e.Left, tags)
		right := Eval(e.Right, tags)
		return left || right
	default:
		panic(fmt.Sprintf("query: unknown expression %T", e))
	}
}

// Literals returns every tag name referenced by e, left to right
func Literals(e Expr) []string {
	switch e := e.(type) {
	case Literal:
		return []string{e.Name}
	case And:
		return append(Literals(e.Left), Literals(e.Right)...)
	case Or:
		return append(Literals(e.Left), Literals(e.Right)...)
	default:
		return nil
	}
}
