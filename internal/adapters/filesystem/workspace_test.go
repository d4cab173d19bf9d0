package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagit/internal/domain"
)

func TestPatternMatcher(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		ignore  []string
		path    string
		want    bool
	}{
		{name: "no patterns allows all", path: "notes/a.md", want: true},
		{name: "include single segment", include: []string{"*.md"}, path: "a.md", want: true},
		{name: "star does not cross segments", include: []string{"*.md"}, path: "notes/a.md", want: false},
		{name: "double star crosses segments", include: []string{"**.md"}, path: "notes/deep/a.md", want: true},
		{name: "include misses", include: []string{"**.md"}, path: "notes/a.txt", want: false},
		{name: "ignore wins over include", include: []string{"**.md"}, ignore: []string{"drafts/**"}, path: "drafts/a.md", want: false},
		{name: "git dir at root", ignore: []string{".git", ".git/**"}, path: ".git/config", want: false},
		{name: "nested git dir", ignore: []string{"**/.git", "**/.git/**"}, path: "vendor/lib/.git/HEAD", want: false},
		{name: "path is cleaned", include: []string{"notes/*.md"}, path: "notes/./a.md", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := NewPatternMatcher(tt.include, tt.ignore)
			if err != nil {
				t.Fatalf("NewPatternMatcher failed: %v", err)
			}
			if got := pm.IsAllowed(tt.path); got != tt.want {
				t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewPatternMatcher_InvalidPattern(t *testing.T) {
	if _, err := NewPatternMatcher([]string{"[unclosed"}, nil); err == nil {
		t.Error("expected error for invalid include pattern")
	}
	if _, err := NewPatternMatcher(nil, []string{"docs/[a-"}); err == nil {
		t.Error("expected error for invalid ignore pattern")
	}
}

func TestWorkspace_Resolve(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root, nil)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	rel, err := ws.Resolve("notes/a.md")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got, want := domain.PathFromIdentity(rel), filepath.Join(ws.Root(), "notes", "a.md"); got != want {
		t.Errorf("relative path resolved to %s, want %s", got, want)
	}

	abs, err := ws.Resolve(filepath.Join(root, "x.md"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.HasPrefix(abs, "file://") {
		t.Errorf("expected file URI, got %s", abs)
	}

	passthrough, err := ws.Resolve("file:///elsewhere/y.md")
	if err != nil || passthrough != "file:///elsewhere/y.md" {
		t.Errorf("file URI should pass through, got %s (%v)", passthrough, err)
	}

	if _, err := ws.Resolve("  "); err == nil {
		t.Error("expected error for empty path")
	}

	if got := ws.Display(rel); got != filepath.Join("notes", "a.md") {
		t.Errorf("Display = %s", got)
	}
}

func TestWorkspace_Ignored(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root, []string{".git", ".git/**", "**.tmp"})
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(ws.Root(), ".git"), true},
		{filepath.Join(ws.Root(), ".git", "index"), true},
		{filepath.Join(ws.Root(), "a", "b.tmp"), true},
		{filepath.Join(ws.Root(), "a", "b.md"), false},
		{ws.Root(), false},
		{filepath.Join(filepath.Dir(ws.Root()), "outside.tmp"), false},
	}

	for _, tt := range tests {
		if got := ws.Ignored(tt.path); got != tt.want {
			t.Errorf("Ignored(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	present := filepath.Join(dir, "present.md")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	presentID, _ := domain.IdentityFromPath(present)
	missingID, _ := domain.IdentityFromPath(filepath.Join(dir, "missing.md"))

	ok, err := Exists(ctx, presentID)
	if err != nil || !ok {
		t.Errorf("Exists(present) = %v, %v", ok, err)
	}

	ok, err = Exists(ctx, missingID)
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}

	_, err = Exists(ctx, "s3://bucket/key")
	if !errors.Is(err, ErrNotProbeable) {
		t.Errorf("expected ErrNotProbeable, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Exists(cancelled, presentID); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
