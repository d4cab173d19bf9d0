package domain

import (
	"slices"
	"time"
)

// Association pairs a file identity with its tags
type Association struct {
	ID   string // FileIdentity, usually a file:// URI
	Tags TagSet
}

// TagCount is a tag together with the number of files carrying it
type TagCount struct {
	Tag   string
	Count int
}

// TagIndex is the inverted view of a set of associations: tag -> files
type TagIndex struct {
	files map[string][]string
}

// BuildTagIndex inverts assocs into a TagIndex.
// File lists are sorted so that repeated builds render identically.
func BuildTagIndex(assocs []Association) *TagIndex {
	idx := &TagIndex{files: make(map[string][]string)}
	for _, a := range assocs {
		for _, tag := range NewTagSet(a.Tags...) {
			idx.files[tag] = append(idx.files[tag], a.ID)
		}
	}
	for tag := range idx.files {
		slices.Sort(idx.files[tag])
		idx.files[tag] = slices.Compact(idx.files[tag])
	}
	return idx
}

// Tags returns every tag name in the index, sorted
func (idx *TagIndex) Tags() []string {
	tags := make([]string, 0, len(idx.files))
	for tag := range idx.files {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Files returns the identities tagged with tag
func (idx *TagIndex) Files(tag string) []string {
	return slices.Clone(idx.files[tag])
}

// Counts returns tag usage counts ordered by tag name
func (idx *TagIndex) Counts() []TagCount {
	counts := make([]TagCount, 0, len(idx.files))
	for _, tag := range idx.Tags() {
		counts = append(counts, TagCount{Tag: tag, Count: len(idx.files[tag])})
	}
	return counts
}

// SortAssociations orders assocs by identity
func SortAssociations(assocs []Association) {
	slices.SortFunc(assocs, func(a, b Association) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

// SweepReport holds statistics from a liveness sweep
type SweepReport struct {
	Checked  int      // Identities probed
	Removed  []string // Identities whose association was deleted
	Skipped  []string // Identities left alone because the probe failed
	Failed   []string // Identities whose deletion failed
	Duration time.Duration
}
