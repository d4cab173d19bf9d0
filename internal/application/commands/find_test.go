package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tagit/internal/adapters/filesystem"
	"tagit/internal/query"
)

func TestFindCommand_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.touch(t, "a.md", "#stack", "#heap")
	f.touch(t, "b.md", "#stack")
	f.touch(t, "docs/c.md", "#heap", "#queue")

	tests := []struct {
		name    string
		query   string
		include []string
		want    []string
	}{
		{name: "single literal", query: "#stack", want: []string{"a.md", "b.md"}},
		{name: "conjunction", query: "#stack & #heap", want: []string{"a.md"}},
		{name: "disjunction", query: "#stack | #queue", want: []string{"a.md", "b.md", "docs/c.md"}},
		{name: "and binds tighter", query: "#queue | #stack & #heap", want: []string{"a.md", "docs/c.md"}},
		{name: "parentheses", query: "(#queue | #stack) & #heap", want: []string{"a.md", "docs/c.md"}},
		{name: "no match", query: "#missing", want: nil},
		{name: "include glob", query: "#heap", include: []string{"docs/**"}, want: []string{"docs/c.md"}},
		{name: "star stays in segment", query: "#heap", include: []string{"*.md"}, want: []string{"a.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewFindCommand(f.store, f.workspace, tt.query)
			if tt.include != nil {
				matcher, err := filesystem.NewPatternMatcher(tt.include, nil)
				if err != nil {
					t.Fatal(err)
				}
				cmd.Include = matcher
			}

			result, err := cmd.Execute(ctx)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}

			var got []string
			for _, m := range result.Matches {
				got = append(got, f.workspace.Display(m.ID))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindCommand_SyntaxError(t *testing.T) {
	f := newFixture(t)

	tests := []string{"", "#a &", "(#a", "#a #b", "| #a"}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			_, err := NewFindCommand(f.store, f.workspace, q).Execute(context.Background())
			if !errors.Is(err, query.ErrSyntax) {
				t.Errorf("expected syntax error for %q, got %v", q, err)
			}
		})
	}
}
