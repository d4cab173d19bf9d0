package domain

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// FileScheme is the URI scheme used for file identities
const FileScheme = "file"

// IdentityFromPath converts a file system path into a FileIdentity URI.
// Relative paths are resolved against the working directory.
func IdentityFromPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: FileScheme, Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// PathFromIdentity converts a file URI back into a local path.
// Identities that are not file URIs are returned unchanged, which lets
// stores created with plain paths keep working.
func PathFromIdentity(id string) string {
	if !strings.HasPrefix(id, FileScheme+"://") {
		return id
	}
	u, err := url.Parse(id)
	if err != nil {
		return id
	}
	return filepath.FromSlash(u.Path)
}

// IsFileIdentity reports whether id is a file URI
func IsFileIdentity(id string) bool {
	return strings.HasPrefix(id, FileScheme+"://")
}

// DisplayName returns a path for id relative to root when possible
func DisplayName(id, root string) string {
	path := PathFromIdentity(id)
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || escapes(rel) {
		return path
	}
	return rel
}

// escapes reports whether a relative path leaves its base directory.
// Names that merely start with two dots, like "..notes", stay inside.
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
