package domain

import (
	"slices"
	"strings"
	"unicode"
)

// TagSet is an ordered collection of tag names with set semantics.
// Order follows first insertion and carries no meaning beyond display.
type TagSet []string

// NewTagSet builds a TagSet from tags, collapsing duplicates to their first occurrence
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		set = append(set, tag)
	}
	return set
}

// Contains reports whether the set holds exactly tag (case-sensitive)
func (s TagSet) Contains(tag string) bool {
	return slices.Contains(s, tag)
}

// Len returns the number of tags
func (s TagSet) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no tags
func (s TagSet) IsEmpty() bool {
	return len(s) == 0
}

// Equal reports set equality, ignoring order
func (s TagSet) Equal(other TagSet) bool {
	a := NewTagSet(s...)
	b := NewTagSet(other...)
	if len(a) != len(b) {
		return false
	}
	for _, tag := range a {
		if !b.Contains(tag) {
			return false
		}
	}
	return true
}

// Union returns s followed by the tags of other not already present
func (s TagSet) Union(other TagSet) TagSet {
	merged := make([]string, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewTagSet(merged...)
}

// Without returns a copy of s with tag removed
func (s TagSet) Without(tag string) TagSet {
	out := make(TagSet, 0, len(s))
	for _, t := range s {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// Sorted returns a sorted copy of the set
func (s TagSet) Sorted() TagSet {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

// String renders the set the way tags are entered: comma separated
func (s TagSet) String() string {
	return strings.Join(s, ", ")
}

// ReservedTagChars are the query operators; a tag containing one could
// never be matched by a query literal.
const ReservedTagChars = "&|()"

// IsValidTagName reports whether name is a legal TagName:
// non-empty, free of whitespace and of ReservedTagChars.
func IsValidTagName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, ReservedTagChars) {
		return false
	}
	return strings.IndexFunc(name, unicode.IsSpace) < 0
}

// InvalidTagNames returns every element of tags that is not a legal TagName,
// in input order, without duplicates.
func InvalidTagNames(tags []string) []string {
	var invalid []string
	for _, tag := range tags {
		if !IsValidTagName(tag) && !slices.Contains(invalid, tag) {
			invalid = append(invalid, tag)
		}
	}
	return invalid
}

// ParseTagList splits user input such as "#stack, #heap" into tags.
// Elements are trimmed and empty ones dropped; inner whitespace is kept
// so that validation can reject it.
func ParseTagList(input string) []string {
	var tags []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// ParseTagArgs flattens command-line arguments where each argument may
// itself be a comma separated list.
func ParseTagArgs(args []string) []string {
	var tags []string
	for _, arg := range args {
		tags = append(tags, ParseTagList(arg)...)
	}
	return tags
}
