package commands

import (
	"context"
	"fmt"

	"tagit/internal/application"
	"tagit/internal/ports"
)

// RenameResult contains the result of a rename operation
type RenameResult struct {
	OldID   string
	NewID   string
	Moved   bool
	Message string
}

// RenameCommand migrates the tags of one file to another path.
// It does not touch the files themselves.
type RenameCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	OldPath   string
	NewPath   string
}

// NewRenameCommand creates a new RenameCommand
func NewRenameCommand(repo ports.TagRepository, workspace ports.Workspace, oldPath, newPath string) *RenameCommand {
	return &RenameCommand{
		repo:      repo,
		workspace: workspace,
		OldPath:   oldPath,
		NewPath:   newPath,
	}
}

// Validate checks both paths
func (c *RenameCommand) Validate() error {
	if err := application.ValidateRequired("oldID", c.OldPath); err != nil {
		return err
	}
	return application.ValidateRequired("newID", c.NewPath)
}

// Execute runs the rename command
func (c *RenameCommand) Execute(ctx context.Context) (*RenameResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	oldID, err := c.workspace.Resolve(c.OldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.OldPath, err)
	}
	newID, err := c.workspace.Resolve(c.NewPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.NewPath, err)
	}

	moved, err := c.repo.RenameIdentity(ctx, oldID, newID)
	if err != nil {
		return nil, err
	}

	oldName, newName := c.workspace.Display(oldID), c.workspace.Display(newID)
	msg := fmt.Sprintf("Moved tags %s -> %s", oldName, newName)
	if !moved {
		msg = fmt.Sprintf("%s has no tags", oldName)
	}

	return &RenameResult{
		OldID:   oldID,
		NewID:   newID,
		Moved:   moved,
		Message: msg,
	}, nil
}
