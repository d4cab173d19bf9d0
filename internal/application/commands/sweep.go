package commands

import (
	"context"
	"errors"

	"tagit/internal/domain"
	"tagit/internal/ports"
)

// SweepCommand deletes associations whose file no longer exists
type SweepCommand struct {
	repo   ports.TagRepository
	exists ports.ExistsFunc
}

// NewSweepCommand creates a new SweepCommand
func NewSweepCommand(repo ports.TagRepository, exists ports.ExistsFunc) *SweepCommand {
	return &SweepCommand{repo: repo, exists: exists}
}

// Execute runs the sweep. The report is returned even when some deletions
// failed, together with the joined error.
func (c *SweepCommand) Execute(ctx context.Context) (*domain.SweepReport, error) {
	if c.exists == nil {
		return nil, errors.New("sweep needs a liveness probe")
	}
	return c.repo.SweepStale(ctx, c.exists)
}
