package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagit/internal/adapters/filesystem"
	"tagit/internal/adapters/memory"
	"tagit/internal/application"
)

type fixture struct {
	store     *application.TagStore
	workspace *filesystem.Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ws, err := filesystem.NewWorkspace(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewWorkspace: %v", err)
	}
	return &fixture{
		store:     application.NewTagStore(memory.NewStorage()),
		workspace: ws,
	}
}

// touch creates rel under the root and tags it
func (f *fixture) touch(t *testing.T, rel string, tags ...string) string {
	t.Helper()
	path := filepath.Join(f.workspace.Root(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if len(tags) > 0 {
		f.tag(t, rel, tags...)
	}
	return path
}

func (f *fixture) tag(t *testing.T, rel string, tags ...string) {
	t.Helper()
	id := f.id(t, rel)
	if err := f.store.SetTags(context.Background(), id, tags); err != nil {
		t.Fatalf("SetTags(%s): %v", rel, err)
	}
}

func (f *fixture) id(t *testing.T, rel string) string {
	t.Helper()
	id, err := f.workspace.Resolve(rel)
	if err != nil {
		t.Fatalf("Resolve(%s): %v", rel, err)
	}
	return id
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
