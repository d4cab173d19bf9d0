package commands

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tagit/internal/adapters/filesystem"
)

func TestSweepCommand_Execute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.touch(t, "alive.md", "#x")
	gone := f.touch(t, "gone.md", "#x")
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}
	// Not a file URI, so the probe cannot decide
	if err := f.store.SetTags(ctx, "mem://scratch", []string{"#x"}); err != nil {
		t.Fatal(err)
	}

	report, err := NewSweepCommand(f.store, filesystem.Exists).Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if report.Checked != 3 {
		t.Errorf("Checked = %d, want 3", report.Checked)
	}
	if diff := cmp.Diff([]string{f.id(t, "gone.md")}, report.Removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mem://scratch"}, report.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	ids, _ := f.store.ListIdentities(ctx)
	if len(ids) != 2 {
		t.Errorf("expected 2 identities left, got %v", ids)
	}
}

func TestSweepCommand_ProbeFailureKeepsAssociation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.touch(t, "a.md", "#x")

	failing := func(ctx context.Context, id string) (bool, error) {
		return false, errors.New("permission denied")
	}

	report, err := NewSweepCommand(f.store, failing).Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Removed) != 0 || len(report.Skipped) != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestSweepCommand_NilProbe(t *testing.T) {
	f := newFixture(t)
	if _, err := NewSweepCommand(f.store, nil).Execute(context.Background()); err == nil {
		t.Error("expected error without a probe")
	}
}
