package commands

import (
	"context"
	"fmt"

	"tagit/internal/application"
	"tagit/internal/ports"
)

// UntagResult reports whether a tag was removed
type UntagResult struct {
	ID      string
	Removed bool
	Message string
}

// UntagCommand removes one tag from a file
type UntagCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	File      string
	Tag       string
}

// NewUntagCommand creates a new UntagCommand
func NewUntagCommand(repo ports.TagRepository, workspace ports.Workspace, file, tag string) *UntagCommand {
	return &UntagCommand{
		repo:      repo,
		workspace: workspace,
		File:      file,
		Tag:       tag,
	}
}

// Validate checks the file and tag
func (c *UntagCommand) Validate() error {
	if err := application.ValidateRequired("id", c.File); err != nil {
		return err
	}
	return application.ValidateTag(c.Tag)
}

// Execute runs the untag command. Removing a tag the file does not carry is not an error.
func (c *UntagCommand) Execute(ctx context.Context) (*UntagResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	id, err := c.workspace.Resolve(c.File)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.File, err)
	}

	removed, err := c.repo.RemoveTag(ctx, id, c.Tag)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Removed %s from %s", c.Tag, c.workspace.Display(id))
	if !removed {
		msg = fmt.Sprintf("%s is not tagged %s", c.workspace.Display(id), c.Tag)
	}

	return &UntagResult{ID: id, Removed: removed, Message: msg}, nil
}

// ClearCommand removes every tag of a file
type ClearCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	File      string
}

// NewClearCommand creates a new ClearCommand
func NewClearCommand(repo ports.TagRepository, workspace ports.Workspace, file string) *ClearCommand {
	return &ClearCommand{repo: repo, workspace: workspace, File: file}
}

// Validate checks the file
func (c *ClearCommand) Validate() error {
	return application.ValidateRequired("id", c.File)
}

// Execute runs the clear command and returns the cleared identity
func (c *ClearCommand) Execute(ctx context.Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	id, err := c.workspace.Resolve(c.File)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", c.File, err)
	}

	if err := c.repo.ClearTags(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
