package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// withTx runs fn in a transaction, rolling back when fn fails
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// replaceTags deletes the rows of key and inserts tags in order
func replaceTags(ctx context.Context, tx *sql.Tx, key string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE identity = ?`, key); err != nil {
		return err
	}

	for i, tag := range tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (identity, position, tag) VALUES (?, ?, ?)`, key, i, tag)
		if err != nil {
			return err
		}
	}
	return nil
}

// Move replaces newKey with tags and drops oldKey in a single transaction
func (s *Storage) Move(ctx context.Context, oldKey, newKey string, tags []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := replaceTags(ctx, tx, newKey, tags); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE identity = ?`, oldKey)
		return err
	})
}
