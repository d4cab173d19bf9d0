package domain

import (
	"path/filepath"
	"slices"
	"testing"
)

func sampleAssociations() []Association {
	return []Association{
		{ID: "file:///w/b.go", Tags: TagSet{"#heap", "#tree"}},
		{ID: "file:///w/a.go", Tags: TagSet{"#heap"}},
		{ID: "file:///w/c.go", Tags: TagSet{"#stack"}},
	}
}

func TestBuildTagIndex(t *testing.T) {
	idx := BuildTagIndex(sampleAssociations())

	if got := idx.Tags(); !slices.Equal(got, []string{"#heap", "#stack", "#tree"}) {
		t.Errorf("unexpected tags: %v", got)
	}

	if got := idx.Files("#heap"); !slices.Equal(got, []string{"file:///w/a.go", "file:///w/b.go"}) {
		t.Errorf("unexpected files for #heap: %v", got)
	}

	if got := idx.Files("#missing"); len(got) != 0 {
		t.Errorf("expected no files for unknown tag, got %v", got)
	}

	counts := idx.Counts()
	if len(counts) != 3 || counts[0] != (TagCount{Tag: "#heap", Count: 2}) {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestBuildTagTree(t *testing.T) {
	root := BuildTagTree(sampleAssociations())

	if root.Kind != NodeRoot || !root.IsExpanded {
		t.Fatalf("expected expanded root, got %+v", root)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 tag nodes, got %d", len(root.Children))
	}

	heap := root.Children[0]
	if heap.Kind != NodeTag || heap.Label != "#heap" {
		t.Errorf("expected first tag #heap, got %s", heap.Label)
	}
	if len(heap.Children) != 2 {
		t.Errorf("expected 2 files under #heap, got %d", len(heap.Children))
	}
	if heap.Children[0].Depth() != 2 || heap.Depth() != 1 {
		t.Errorf("unexpected depths: tag=%d file=%d", heap.Depth(), heap.Children[0].Depth())
	}

	// collapsed tags hide their files
	if got := len(root.Flatten()); got != 4 {
		t.Errorf("expected 4 visible nodes, got %d", got)
	}

	heap.Expand()
	if got := len(root.Flatten()); got != 6 {
		t.Errorf("expected 6 visible nodes after expand, got %d", got)
	}

	heap.Toggle()
	if heap.IsExpanded {
		t.Error("expected toggle to collapse")
	}
}

func TestBuildFileTree(t *testing.T) {
	assocs := append(sampleAssociations(), Association{ID: "file:///w/empty.go"})
	root := BuildFileTree(assocs)

	if len(root.Children) != 3 {
		t.Fatalf("expected 3 file nodes (empty skipped), got %d", len(root.Children))
	}
	if root.Children[0].ID != "file:///w/a.go" {
		t.Errorf("expected files sorted by identity, got %s first", root.Children[0].ID)
	}

	root.ExpandAll()
	var tags []string
	for _, n := range root.Flatten() {
		if n.Kind == NodeTag {
			tags = append(tags, n.Label)
		}
	}
	if !slices.Equal(tags, []string{"#heap", "#heap", "#tree", "#stack"}) {
		t.Errorf("unexpected tag leaves: %v", tags)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes with space.md")

	id, err := IdentityFromPath(path)
	if err != nil {
		t.Fatalf("IdentityFromPath failed: %v", err)
	}
	if !IsFileIdentity(id) {
		t.Errorf("expected file URI, got %s", id)
	}
	if got := PathFromIdentity(id); got != path {
		t.Errorf("PathFromIdentity() = %s, want %s", got, path)
	}
	if got := DisplayName(id, dir); got != "notes with space.md" {
		t.Errorf("DisplayName() = %s", got)
	}
}

func TestDisplayName(t *testing.T) {
	root := filepath.FromSlash("/w/notes")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"inside", "/w/notes/a.md", "a.md"},
		{"nested", "/w/notes/sub/b.md", filepath.FromSlash("sub/b.md")},
		{"dot-dot name inside", "/w/notes/..drafts/x.md", filepath.FromSlash("..drafts/x.md")},
		{"dot-dot file inside", "/w/notes/..x.md", "..x.md"},
		{"sibling", "/w/other/c.md", filepath.FromSlash("/w/other/c.md")},
		{"parent", "/w", filepath.FromSlash("/w")},
		{"sibling with root as prefix", "/w/notes2/d.md", filepath.FromSlash("/w/notes2/d.md")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := "file://" + tt.path
			if got := DisplayName(id, root); got != tt.want {
				t.Errorf("DisplayName(%s) = %s, want %s", id, got, tt.want)
			}
		})
	}

	if got := DisplayName("file:///w/notes/a.md", ""); got != filepath.FromSlash("/w/notes/a.md") {
		t.Errorf("DisplayName without root = %s", got)
	}
}

func TestPathFromIdentity_PlainPath(t *testing.T) {
	if got := PathFromIdentity("/tmp/a.go"); got != "/tmp/a.go" {
		t.Errorf("expected plain path unchanged, got %s", got)
	}
}
