package ports

import (
	"context"

	"tagit/internal/domain"
)

// TagRepository is the tag store as seen by commands and adapters
type TagRepository interface {
	// Reads
	GetTags(ctx context.Context, id string) (domain.TagSet, error)
	ListIdentities(ctx context.Context) ([]string, error)
	Associations(ctx context.Context) ([]domain.Association, error)

	// Writes
	SetTags(ctx context.Context, id string, tags []string) error
	AddTags(ctx context.Context, id string, tags []string) error
	RemoveTag(ctx context.Context, id, tag string) (bool, error)
	ClearTags(ctx context.Context, id string) error

	// Lifecycle
	RenameIdentity(ctx context.Context, oldID, newID string) (bool, error)
	SweepStale(ctx context.Context, exists ExistsFunc) (*domain.SweepReport, error)
}
