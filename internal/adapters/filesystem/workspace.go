package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tagit/internal/domain"
	"tagit/internal/ports"
)

// ErrNotProbeable is returned by Exists for identities that are not file URIs
var ErrNotProbeable = errors.New("identity is not a local file")

// Workspace maps command line paths to file identities under a root
type Workspace struct {
	root    string
	matcher *PatternMatcher
}

// Ensure Exists satisfies the liveness probe signature
var _ ports.ExistsFunc = Exists

// NewWorkspace creates a workspace rooted at root; ignore holds glob patterns
// matched against slash separated paths relative to root.
func NewWorkspace(root string, ignore []string) (*Workspace, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	matcher, err := NewPatternMatcher(nil, ignore)
	if err != nil {
		return nil, err
	}

	return &Workspace{root: abs, matcher: matcher}, nil
}

// Root returns the absolute workspace root
func (w *Workspace) Root() string {
	return w.root
}

// Resolve turns a command line argument into a file identity.
// File URIs pass through; relative paths resolve against the root.
func (w *Workspace) Resolve(arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return "", errors.New("empty path")
	}
	if domain.IsFileIdentity(arg) {
		return arg, nil
	}
	if !filepath.IsAbs(arg) {
		arg = filepath.Join(w.root, arg)
	}
	return domain.IdentityFromPath(arg)
}

// Rel returns the slash separated path of p relative to the root.
// ok is false when p lies outside the root.
func (w *Workspace) Rel(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Ignored reports whether an absolute path matches an ignore pattern.
// Paths outside the root are never ignored.
func (w *Workspace) Ignored(p string) bool {
	rel, ok := w.Rel(p)
	if !ok || rel == "." {
		return false
	}
	return w.matcher.IsIgnored(rel)
}

// Display returns the identity as a path relative to the root when possible
func (w *Workspace) Display(id string) string {
	return domain.DisplayName(id, w.root)
}

// Exists reports whether the file behind id is still present.
// A missing file is (false, nil); any other stat failure is an error so the
// sweep leaves the association alone.
func Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !domain.IsFileIdentity(id) {
		return false, fmt.Errorf("%w: %s", ErrNotProbeable, id)
	}

	_, err := os.Stat(domain.PathFromIdentity(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
