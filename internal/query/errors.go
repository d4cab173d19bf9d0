package query

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError
var ErrSyntax = errors.New("query syntax error")

// SyntaxError describes why a query failed to compile
type SyntaxError struct {
	Pos   int    // Byte offset where the problem was found
	Token string // Offending token, empty at end of input
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at position %d: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
