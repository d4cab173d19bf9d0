package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"tagit/internal/domain"
	"tagit/internal/ports"
	"tagit/internal/query"
)

// FindResult contains the compiled query and the files it matched
type FindResult struct {
	Query   *query.Query
	Matches []domain.Association
	Message string
}

// FindCommand evaluates a boolean tag query against every association
type FindCommand struct {
	repo      ports.TagRepository
	workspace ports.Workspace
	Query     string
	// Include restricts matches to displayed paths the filter allows
	Include ports.PathFilter
}

// NewFindCommand creates a new FindCommand
func NewFindCommand(repo ports.TagRepository, workspace ports.Workspace, q string) *FindCommand {
	return &FindCommand{
		repo:      repo,
		workspace: workspace,
		Query:     q,
	}
}

// Execute compiles the query before touching storage, so a syntax error
// never costs a read.
func (c *FindCommand) Execute(ctx context.Context) (*FindResult, error) {
	q, err := query.Compile(c.Query)
	if err != nil {
		return nil, err
	}

	assocs, err := c.repo.Associations(ctx)
	if err != nil {
		return nil, err
	}

	matches := q.Filter(assocs)
	if c.Include != nil {
		kept := matches[:0]
		for _, m := range matches {
			if c.Include.IsAllowed(filepath.ToSlash(c.workspace.Display(m.ID))) {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	return &FindResult{
		Query:   q,
		Matches: matches,
		Message: fmt.Sprintf("%d file(s) match %s", len(matches), q),
	}, nil
}
