package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagit/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: " \t\n ",
			want:  nil,
		},
		{
			name:  "operators without spaces",
			input: "#a&(#b|#c)",
			want: []Token{
				{Kind: TokenLiteral, Text: "#a", Pos: 0},
				{Kind: TokenAnd, Text: "&", Pos: 2},
				{Kind: TokenLParen, Text: "(", Pos: 3},
				{Kind: TokenLiteral, Text: "#b", Pos: 4},
				{Kind: TokenOr, Text: "|", Pos: 6},
				{Kind: TokenLiteral, Text: "#c", Pos: 7},
				{Kind: TokenRParen, Text: ")", Pos: 9},
			},
		},
		{
			name:  "whitespace splits literals",
			input: "  #heap   #tree ",
			want: []Token{
				{Kind: TokenLiteral, Text: "#heap", Pos: 2},
				{Kind: TokenLiteral, Text: "#tree", Pos: 10},
			},
		},
		{
			name:  "multibyte literal",
			input: "日本 & c++",
			want: []Token{
				{Kind: TokenLiteral, Text: "日本", Pos: 0},
				{Kind: TokenAnd, Text: "&", Pos: 7},
				{Kind: TokenLiteral, Text: "c++", Pos: 9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.input)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParse_Trees(t *testing.T) {
	a, b, c := Literal{Name: "#a"}, Literal{Name: "#b"}, Literal{Name: "#c"}

	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{name: "single literal", input: "#a", want: a},
		{name: "and binds tighter than or", input: "#a | #b & #c", want: Or{Left: a, Right: And{Left: b, Right: c}}},
		{name: "and first", input: "#a & #b | #c", want: Or{Left: And{Left: a, Right: b}, Right: c}},
		{name: "parentheses override", input: "(#a | #b) & #c", want: And{Left: Or{Left: a, Right: b}, Right: c}},
		{name: "left associative and", input: "#a & #b & #c", want: And{Left: And{Left: a, Right: b}, Right: c}},
		{name: "left associative or", input: "#a|#b|#c", want: Or{Left: Or{Left: a, Right: b}, Right: c}},
		{name: "redundant parentheses", input: "((#a))", want: a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPos int
		wantTok string
		wantMsg string
	}{
		{name: "empty input", input: "", wantPos: 0, wantMsg: "unexpected end of input"},
		{name: "blank input", input: "   ", wantPos: 3, wantMsg: "unexpected end of input"},
		{name: "dangling and", input: "#a &", wantPos: 4, wantMsg: "unexpected end of input"},
		{name: "dangling or", input: "#a |", wantPos: 4, wantMsg: "unexpected end of input"},
		{name: "unclosed paren", input: "(#a", wantPos: 3, wantMsg: "expected ')'"},
		{name: "unclosed nested paren", input: "((#a | #b)", wantPos: 10, wantMsg: "expected ')'"},
		{name: "unmatched close", input: "#a)", wantPos: 2, wantTok: ")", wantMsg: `unexpected token ")"`},
		{name: "trailing close after and", input: "#a & #b)", wantPos: 7, wantTok: ")", wantMsg: `unexpected token ")"`},
		{name: "two literals", input: "#a #b", wantPos: 3, wantTok: "#b", wantMsg: `unexpected token "#b"`},
		{name: "consecutive operators", input: "#a & | #b", wantPos: 5, wantTok: "|", wantMsg: `unexpected token "|"`},
		{name: "leading operator", input: "& #a", wantPos: 0, wantTok: "&", wantMsg: `unexpected token "&"`},
		{name: "empty parens", input: "()", wantPos: 1, wantTok: ")", wantMsg: `unexpected token ")"`},
		{name: "literal where close expected", input: "(#a #b)", wantPos: 4, wantTok: "#b", wantMsg: "expected ')'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, expr)

			assert.True(t, errors.Is(err, ErrSyntax))

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tt.wantPos, syntaxErr.Pos)
			assert.Equal(t, tt.wantTok, syntaxErr.Token)
			assert.Contains(t, syntaxErr.Error(), tt.wantMsg)
		})
	}
}

func TestCompile_NoPredicateOnError(t *testing.T) {
	for _, input := range []string{"#a &", "(#a", "#a #b", "#a)"} {
		q, err := Compile(input)
		assert.Error(t, err, input)
		assert.Nil(t, q, input)
	}
}

func TestQuery_Precedence(t *testing.T) {
	q := MustCompile("#a | #b & #c")

	assert.True(t, q.Match(domain.TagSet{"#a"}))
	assert.False(t, q.Match(domain.TagSet{"#b"}))
	assert.True(t, q.Match(domain.TagSet{"#b", "#c"}))
	assert.False(t, q.Match(domain.TagSet{}))
}

func TestQuery_ParenthesesChangeResult(t *testing.T) {
	grouped := MustCompile("(#a | #b) & #c")
	plain := MustCompile("#a | #b & #c")

	both := domain.TagSet{"#a", "#c"}
	assert.True(t, grouped.Match(both))
	assert.True(t, plain.Match(both))

	onlyB := domain.TagSet{"#b"}
	assert.False(t, grouped.Match(onlyB))
	assert.False(t, plain.Match(onlyB))

	onlyA := domain.TagSet{"#a"}
	assert.False(t, grouped.Match(onlyA), "grouped form needs #c")
	assert.True(t, plain.Match(onlyA), "#a alone satisfies the OR")
}

func TestQuery_LiteralIsExact(t *testing.T) {
	q := MustCompile("#heap")

	assert.True(t, q.Match(domain.TagSet{"#heap"}))
	assert.False(t, q.Match(domain.TagSet{"#Heap"}), "case sensitive")
	assert.False(t, q.Match(domain.TagSet{"#heaps"}), "no partial match")
	assert.False(t, q.Match(domain.TagSet{"heap"}), "no prefix stripping")
	assert.False(t, q.Match(nil))
}

func TestQuery_Deterministic(t *testing.T) {
	sets := []domain.TagSet{
		{}, {"#a"}, {"#b"}, {"#c"}, {"#a", "#b"}, {"#b", "#c"}, {"#a", "#c"}, {"#a", "#b", "#c"},
	}
	first := MustCompile("(#a & #b) | (#c & #a) | #b & #c")
	second := MustCompile("(#a & #b) | (#c & #a) | #b & #c")

	for _, s := range sets {
		assert.Equal(t, first.Match(s), second.Match(s), "set %v", s)
		assert.Equal(t, first.Match(s), first.Match(s), "set %v", s)
	}
}

func TestQuery_Filter(t *testing.T) {
	assocs := []domain.Association{
		{ID: "file:///a", Tags: domain.TagSet{"#heap", "#tree"}},
		{ID: "file:///b", Tags: domain.TagSet{"#heap"}},
		{ID: "file:///c", Tags: domain.TagSet{"#tree"}},
	}

	got := MustCompile("#heap & #tree").Filter(assocs)
	require.Len(t, got, 1)
	assert.Equal(t, "file:///a", got[0].ID)

	assert.Empty(t, MustCompile("#missing").Filter(assocs))
}

func TestQuery_StringAndLiterals(t *testing.T) {
	q := MustCompile("#a | #b & (#c | #d)")

	assert.Equal(t, "(#a | (#b & (#c | #d)))", q.String())
	assert.Equal(t, "#a | #b & (#c | #d)", q.Source())
	assert.Equal(t, []string{"#a", "#b", "#c", "#d"}, Literals(q.Expr()))

	// the rendered form parses back to the same tree
	again, err := Parse(q.String())
	require.NoError(t, err)
	if diff := cmp.Diff(q.Expr(), again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("#a &") })
}
