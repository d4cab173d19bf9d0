package application

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"tagit/internal/domain"
	"tagit/internal/ports"
)

// TagStore owns the file identity -> tag set mapping.
// It validates every write and holds no cache: each read goes to storage.
// Calls on different identities may run concurrently; callers serialize
// calls on the same identity when last-writer-wins is not acceptable.
type TagStore struct {
	storage ports.TagStorage
	logger  *zap.Logger
}

// Ensure TagStore implements TagRepository
var _ ports.TagRepository = (*TagStore)(nil)

// Option configures a TagStore
type Option func(*TagStore)

// WithLogger sets the logger used for write and sweep events
func WithLogger(logger *zap.Logger) Option {
	return func(s *TagStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTagStore creates a TagStore over storage
func NewTagStore(storage ports.TagStorage, opts ...Option) *TagStore {
	s := &TagStore{
		storage: storage,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTags returns the tags of id, or an empty set when it has none
func (s *TagStore) GetTags(ctx context.Context, id string) (domain.TagSet, error) {
	tags, ok, err := s.storage.Read(ctx, id)
	if err != nil {
		return domain.TagSet{}, persistenceErr("read", id, err)
	}
	if !ok {
		return domain.TagSet{}, nil
	}
	return domain.NewTagSet(tags...), nil
}

// SetTags replaces the tags of id.
// Invalid tag names reject the whole call; an empty set deletes the association.
func (s *TagStore) SetTags(ctx context.Context, id string, tags []string) error {
	if err := ValidateRequired("id", id); err != nil {
		return err
	}
	if err := ValidateTags(tags); err != nil {
		return err
	}

	set := domain.NewTagSet(tags...)
	if set.IsEmpty() {
		return s.ClearTags(ctx, id)
	}

	if err := s.storage.Write(ctx, id, set); err != nil {
		return persistenceErr("write", id, err)
	}

	s.logger.Debug("tags set", zap.String("id", id), zap.Strings("tags", set))
	return nil
}

// AddTags merges tags into the existing set of id
func (s *TagStore) AddTags(ctx context.Context, id string, tags []string) error {
	if err := ValidateTags(tags); err != nil {
		return err
	}

	current, err := s.GetTags(ctx, id)
	if err != nil {
		return err
	}
	return s.SetTags(ctx, id, current.Union(tags))
}

// RemoveTag removes a single tag from id.
// It reports whether the tag was present.
func (s *TagStore) RemoveTag(ctx context.Context, id, tag string) (bool, error) {
	current, err := s.GetTags(ctx, id)
	if err != nil {
		return false, err
	}
	if !current.Contains(tag) {
		return false, nil
	}
	if err := s.SetTags(ctx, id, current.Without(tag)); err != nil {
		return false, err
	}
	return true, nil
}

// ClearTags removes the association of id. Missing keys are not an error.
func (s *TagStore) ClearTags(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return persistenceErr("delete", id, err)
	}

	s.logger.Debug("tags cleared", zap.String("id", id))
	return nil
}

// RenameIdentity moves the tags of oldID to newID, replacing whatever newID had.
// It returns false with a nil error when oldID has no tags. Renaming an identity
// to itself changes nothing and reports whether it is tagged. On failure oldID
// keeps its tags.
func (s *TagStore) RenameIdentity(ctx context.Context, oldID, newID string) (bool, error) {
	if err := ValidateRequired("newID", newID); err != nil {
		return false, err
	}

	tags, err := s.GetTags(ctx, oldID)
	if err != nil {
		return false, err
	}
	if tags.IsEmpty() {
		return false, nil
	}
	if oldID == newID {
		return true, nil
	}
	if err := ValidateTags(tags); err != nil {
		return false, err
	}

	if mover, ok := s.storage.(ports.TagMover); ok {
		if err := mover.Move(ctx, oldID, newID, tags); err != nil {
			return false, persistenceErr("move", oldID, err)
		}
	} else if err := s.copyThenDelete(ctx, oldID, newID, tags); err != nil {
		return false, err
	}

	s.logger.Debug("identity renamed", zap.String("old", oldID), zap.String("new", newID))
	return true, nil
}

// copyThenDelete is the non-atomic rename path. If oldID cannot be deleted,
// newID is put back the way it was so that only oldID carries the tags.
func (s *TagStore) copyThenDelete(ctx context.Context, oldID, newID string, tags domain.TagSet) error {
	previous, hadPrevious, err := s.storage.Read(ctx, newID)
	if err != nil {
		return persistenceErr("read", newID, err)
	}

	if err := s.storage.Write(ctx, newID, tags); err != nil {
		return persistenceErr("write", newID, err)
	}

	if err := s.storage.Delete(ctx, oldID); err != nil {
		var restoreErr error
		if hadPrevious {
			restoreErr = s.storage.Write(ctx, newID, previous)
		} else {
			restoreErr = s.storage.Delete(ctx, newID)
		}
		if restoreErr != nil {
			s.logger.Error("failed to restore rename target",
				zap.String("id", newID), zap.Error(restoreErr))
		}
		return persistenceErr("delete", oldID, err)
	}
	return nil
}

// ListIdentities returns every identity with tags, sorted
func (s *TagStore) ListIdentities(ctx context.Context) ([]string, error) {
	keys, err := s.storage.Keys(ctx)
	if err != nil {
		return nil, persistenceErr("keys", "", err)
	}
	ids := slices.Clone(keys)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Associations returns a snapshot of every identity with its tags
func (s *TagStore) Associations(ctx context.Context) ([]domain.Association, error) {
	ids, err := s.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	assocs := make([]domain.Association, 0, len(ids))
	for _, id := range ids {
		tags, err := s.GetTags(ctx, id)
		if err != nil {
			return nil, err
		}
		// Removed between listing and reading
		if tags.IsEmpty() {
			continue
		}
		assocs = append(assocs, domain.Association{ID: id, Tags: tags})
	}
	return assocs, nil
}

// SweepStale removes the association of every identity for which exists
// reports false. Identities whose probe fails are skipped and left intact.
// Identities created after the snapshot is taken are not visited.
func (s *TagStore) SweepStale(ctx context.Context, exists ports.ExistsFunc) (*domain.SweepReport, error) {
	start := time.Now()
	report := &domain.SweepReport{}

	ids, err := s.ListIdentities(ctx)
	if err != nil {
		return report, err
	}

	var errs []error
	for _, id := range ids {
		report.Checked++

		alive, err := exists(ctx, id)
		if err != nil {
			s.logger.Warn("liveness probe failed, skipping",
				zap.String("id", id), zap.Error(err))
			report.Skipped = append(report.Skipped, id)
			continue
		}
		if alive {
			continue
		}

		if err := s.ClearTags(ctx, id); err != nil {
			report.Failed = append(report.Failed, id)
			errs = append(errs, err)
			continue
		}
		report.Removed = append(report.Removed, id)
	}

	report.Duration = time.Since(start)
	s.logger.Info("sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("removed", len(report.Removed)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Duration("duration", report.Duration))

	return report, errors.Join(errs...)
}
