package commands

import (
	"context"
	"testing"

	"tagit/internal/domain"
)

func TestRenameCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		oldPath string
		newPath string
		errMsg  string
	}{
		{name: "valid", oldPath: "a.md", newPath: "b.md"},
		{name: "empty source", oldPath: "", newPath: "b.md", errMsg: "old identity is required"},
		{name: "whitespace destination", oldPath: "a.md", newPath: "  ", errMsg: "new identity is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRenameCommand(nil, nil, tt.oldPath, tt.newPath).Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestRenameCommand_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.touch(t, "a.md", "#x")
	f.touch(t, "b.md", "#old")

	result, err := NewRenameCommand(f.store, f.workspace, "a.md", "b.md").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Moved {
		t.Fatal("expected tags to move")
	}
	if result.Message != "Moved tags a.md -> b.md" {
		t.Errorf("Message = %q", result.Message)
	}

	oldTags, _ := f.store.GetTags(ctx, result.OldID)
	newTags, _ := f.store.GetTags(ctx, result.NewID)
	if !oldTags.IsEmpty() {
		t.Errorf("old identity still has %v", oldTags)
	}
	if !newTags.Equal(domain.TagSet{"#x"}) {
		t.Errorf("new identity has %v, want [#x]", newTags)
	}
}

func TestRenameCommand_Untagged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.touch(t, "b.md", "#keep")

	result, err := NewRenameCommand(f.store, f.workspace, "a.md", "b.md").Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Moved {
		t.Error("nothing should move")
	}
	if result.Message != "a.md has no tags" {
		t.Errorf("Message = %q", result.Message)
	}

	tags, _ := f.store.GetTags(ctx, result.NewID)
	if !tags.Equal(domain.TagSet{"#keep"}) {
		t.Errorf("destination changed to %v", tags)
	}
}
