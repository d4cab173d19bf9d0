package commands

import (
	"context"
	"fmt"

	"tagit/internal/application"
	"tagit/internal/domain"
	"tagit/internal/ports"
)

// TagResult contains the tags a file carries after a tag operation
type TagResult struct {
	ID      string
	Tags    domain.TagSet
	Message string
}

// TagCommand sets or extends the tags of one file
type TagCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	File      string
	Tags      []string
	// Append merges Tags into the existing set instead of replacing it
	Append bool
}

// NewTagCommand creates a command that replaces the tags of file.
// Each element of tags may itself be a comma separated list.
func NewTagCommand(repo ports.TagRepository, workspace ports.Workspace, file string, tags []string) *TagCommand {
	return &TagCommand{
		repo:      repo,
		workspace: workspace,
		File:      file,
		Tags:      domain.ParseTagArgs(tags),
	}
}

// NewAddTagsCommand creates a command that adds tags to file
func NewAddTagsCommand(repo ports.TagRepository, workspace ports.Workspace, file string, tags []string) *TagCommand {
	cmd := NewTagCommand(repo, workspace, file, tags)
	cmd.Append = true
	return cmd
}

// Validate checks the file and every tag name
func (c *TagCommand) Validate() error {
	if err := application.ValidateRequired("id", c.File); err != nil {
		return err
	}
	if len(c.Tags) == 0 {
		return &application.ValidationError{
			Field:   "tags",
			Message: "at least one tag is required",
		}
	}
	return application.ValidateTags(c.Tags)
}

// Execute runs the tag command
func (c *TagCommand) Execute(ctx context.Context) (*TagResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	id, err := c.workspace.Resolve(c.File)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.File, err)
	}

	if c.Append {
		err = c.repo.AddTags(ctx, id, c.Tags)
	} else {
		err = c.repo.SetTags(ctx, id, c.Tags)
	}
	if err != nil {
		return nil, err
	}

	tags, err := c.repo.GetTags(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TagResult{
		ID:      id,
		Tags:    tags,
		Message: fmt.Sprintf("%s: %s", c.workspace.Display(id), tags),
	}, nil
}
