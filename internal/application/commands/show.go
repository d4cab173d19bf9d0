package commands

import (
	"context"
	"fmt"

	"tagit/internal/application"
	"tagit/internal/domain"
	"tagit/internal/ports"
)

// ShowCommand reads the tags of one file
type ShowCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	File      string
}

// NewShowCommand creates a new ShowCommand
func NewShowCommand(repo ports.TagRepository, workspace ports.Workspace, file string) *ShowCommand {
	return &ShowCommand{repo: repo, workspace: workspace, File: file}
}

// Execute returns the association of the file; Tags is empty when it has none
func (c *ShowCommand) Execute(ctx context.Context) (*domain.Association, error) {
	if err := application.ValidateRequired("id", c.File); err != nil {
		return nil, err
	}

	id, err := c.workspace.Resolve(c.File)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.File, err)
	}

	tags, err := c.repo.GetTags(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Association{ID: id, Tags: tags}, nil
}

// ListFilesCommand lists every tagged file
type ListFilesCommand struct {
	repo ports.TagRepository
	// Tag restricts the listing to files carrying it
	Tag string
}

// NewListFilesCommand creates a new ListFilesCommand
func NewListFilesCommand(repo ports.TagRepository, tag string) *ListFilesCommand {
	return &ListFilesCommand{repo: repo, Tag: tag}
}

// Execute returns associations ordered by identity
func (c *ListFilesCommand) Execute(ctx context.Context) ([]domain.Association, error) {
	assocs, err := c.repo.Associations(ctx)
	if err != nil {
		return nil, err
	}
	if c.Tag == "" {
		return assocs, nil
	}

	filtered := assocs[:0]
	for _, a := range assocs {
		if a.Tags.Contains(c.Tag) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ListTagsCommand lists every tag in use with its file count
type ListTagsCommand struct {
	repo ports.TagRepository
}

// NewListTagsCommand creates a new ListTagsCommand
func NewListTagsCommand(repo ports.TagRepository) *ListTagsCommand {
	return &ListTagsCommand{repo: repo}
}

// Execute returns tag counts ordered by tag name
func (c *ListTagsCommand) Execute(ctx context.Context) ([]domain.TagCount, error) {
	assocs, err := c.repo.Associations(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildTagIndex(assocs).Counts(), nil
}

// TreeCommand builds the browse tree
type TreeCommand struct {
	repo ports.TagRepository
	// ByFile groups tags under files instead of files under tags
	ByFile bool
}

// NewTreeCommand creates a new TreeCommand
func NewTreeCommand(repo ports.TagRepository, byFile bool) *TreeCommand {
	return &TreeCommand{repo: repo, ByFile: byFile}
}

// Execute returns the root of the tree
func (c *TreeCommand) Execute(ctx context.Context) (*domain.TreeNode, error) {
	assocs, err := c.repo.Associations(ctx)
	if err != nil {
		return nil, err
	}
	if c.ByFile {
		return domain.BuildFileTree(assocs), nil
	}
	return domain.BuildTagTree(assocs), nil
}
