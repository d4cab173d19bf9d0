package filesystem

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// PatternMatcher decides which slash separated relative paths are in scope.
// '*' stays within one path segment, '**' crosses segments.
type PatternMatcher struct {
	includePatterns []glob.Glob
	ignorePatterns  []glob.Glob
}

// NewPatternMatcher compiles include and ignore globs
func NewPatternMatcher(include, ignore []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		pm.includePatterns = append(pm.includePatterns, g)
	}

	for _, pattern := range ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern '%s': %w", pattern, err)
		}
		pm.ignorePatterns = append(pm.ignorePatterns, g)
	}

	return pm, nil
}

// IsAllowed returns true if the path is allowed by the pattern rules
func (pm *PatternMatcher) IsAllowed(p string) bool {
	p = path.Clean(p)

	// Ignore patterns take precedence
	if pm.IsIgnored(p) {
		return false
	}

	// If no include patterns specified, allow all (except ignored)
	if len(pm.includePatterns) == 0 {
		return true
	}

	for _, pattern := range pm.includePatterns {
		if pattern.Match(p) {
			return true
		}
	}

	return false
}

// IsIgnored reports whether any ignore pattern matches p
func (pm *PatternMatcher) IsIgnored(p string) bool {
	for _, pattern := range pm.ignorePatterns {
		if pattern.Match(p) {
			return true
		}
	}
	return false
}
