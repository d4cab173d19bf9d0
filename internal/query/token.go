package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"tagit/internal/domain"
)

// TokenKind classifies a query token
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenAnd
	TokenOr
	TokenLParen
	TokenRParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenAnd:
		return "&"
	case TokenOr:
		return "|"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "unknown"
	}
}

// Token is a lexical unit of a query
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // Byte offset in the input
}

// Tokenize scans input left to right into tokens.
// Whitespace separates tokens and is never part of a literal.
func Tokenize(input string) []Token {
	var tokens []Token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '&':
			tokens = append(tokens, Token{Kind: TokenAnd, Text: "&", Pos: i})
			i += size
		case r == '|':
			tokens = append(tokens, Token{Kind: TokenOr, Text: "|", Pos: i})
			i += size
		case r == '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Pos: i})
			i += size
		case r == ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Pos: i})
			i += size
		default:
			start := i
			for i < len(input) {
				r, size = utf8.DecodeRuneInString(input[i:])
				if unicode.IsSpace(r) || strings.ContainsRune(domain.ReservedTagChars, r) {
					break
				}
				i += size
			}
			tokens = append(tokens, Token{Kind: TokenLiteral, Text: input[start:i], Pos: start})
		}
	}
	return tokens
}
