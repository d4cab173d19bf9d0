package application

import "tagit/internal/domain"

// Re-export domain types for use by adapters
type (
	TagSet      = domain.TagSet
	Association = domain.Association
	TagCount    = domain.TagCount
	TreeNode    = domain.TreeNode
	SweepReport = domain.SweepReport
)

// Re-export tree node kinds
const (
	NodeRoot = domain.NodeRoot
	NodeTag  = domain.NodeTag
	NodeFile = domain.NodeFile
)

// ParseTagList splits comma separated user input into tags
func ParseTagList(input string) []string {
	return domain.ParseTagList(input)
}
