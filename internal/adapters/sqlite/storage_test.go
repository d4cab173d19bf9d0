package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagit/internal/application"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "tags.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	_, ok, err := s.Read(ctx, "file:///a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "file:///a", []string{"#z", "#a", "#m"}))
	tags, ok, err := s.Read(ctx, "file:///a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"#z", "#a", "#m"}, tags, "insertion order is kept")

	require.NoError(t, s.Write(ctx, "file:///a", []string{"#only"}))
	tags, _, err = s.Read(ctx, "file:///a")
	require.NoError(t, err)
	assert.Equal(t, []string{"#only"}, tags)

	require.NoError(t, s.Delete(ctx, "file:///a"))
	require.NoError(t, s.Delete(ctx, "file:///a"))
	_, ok, err = s.Read(ctx, "file:///a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_Keys(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	require.NoError(t, s.Write(ctx, "file:///c", []string{"#x", "#y"}))
	require.NoError(t, s.Write(ctx, "file:///a", []string{"#x"}))
	require.NoError(t, s.Write(ctx, "file:///b", []string{"#x"}))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///a", "file:///b", "file:///c"}, keys)
}

func TestStorage_Move(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	require.NoError(t, s.Write(ctx, "old", []string{"#x", "#y"}))
	require.NoError(t, s.Write(ctx, "new", []string{"#stale"}))

	require.NoError(t, s.Move(ctx, "old", "new", []string{"#x", "#y"}))

	_, ok, err := s.Read(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)

	tags, ok, err := s.Read(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"#x", "#y"}, tags)
}

func TestStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tags.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "file:///a", []string{"#kept"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	tags, ok, err := s.Read(ctx, "file:///a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"#kept"}, tags)
	assert.Equal(t, path, s.Path())
}

func TestStorage_JournalModeOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	// Hold several connections open at once so the pool has to dial new ones
	conns := make([]*sql.Conn, 4)
	for i := range conns {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		conns[i] = conn
	}
	for _, conn := range conns {
		var mode string
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, "wal", strings.ToLower(mode))
		assert.Equal(t, busyTimeoutMS, timeout)
		conn.Close()
	}
}

func TestStorage_ConcurrentWritesToDistinctIdentities(t *testing.T) {
	ctx := context.Background()
	store := application.NewTagStore(openTestStorage(t))

	const writers, rounds = 16, 20
	var wg sync.WaitGroup
	errs := make(chan error, writers*rounds)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("file:///f%d", w)
			for r := 0; r < rounds; r++ {
				if err := store.SetTags(ctx, id, []string{"#w", fmt.Sprintf("#r%d", r)}); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	for w := 0; w < writers; w++ {
		tags, err := store.GetTags(ctx, fmt.Sprintf("file:///f%d", w))
		require.NoError(t, err)
		assert.Equal(t, []string{"#w", fmt.Sprintf("#r%d", rounds-1)}, []string(tags))
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"/d/tags.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		dsn(DriverPure, "/d/tags.db"))
	assert.Equal(t,
		"/d/tags.db?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate",
		dsn(DriverCGO, "/d/tags.db"))
}

func TestOpenDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenDriver(ctx, "postgres", filepath.Join(t.TempDir(), "tags.db"))
		assert.ErrorContains(t, err, "unknown sqlite driver")
	})

	t.Run("cgo driver", func(t *testing.T) {
		s, err := OpenDriver(ctx, DriverCGO, filepath.Join(t.TempDir(), "tags.db"))
		if err != nil && strings.Contains(err.Error(), "cgo") {
			t.Skip("go-sqlite3 needs cgo")
		}
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Write(ctx, "file:///a", []string{"#b", "#a"}))
		tags, ok, err := s.Read(ctx, "file:///a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"#b", "#a"}, tags)
	})
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	a := DatabasePath("/home/me/notes")
	b := DatabasePath("/home/me/other")

	assert.Equal(t, "/data/tagit", filepath.Dir(a))
	assert.Equal(t, ".db", filepath.Ext(a))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, DatabasePath("/home/me/notes"))
}

func TestStorage_WriteFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		mock func(mock sqlmock.Sqlmock)
	}{
		{
			name: "begin fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(sql.ErrConnDone)
			},
		},
		{
			name: "delete fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM tags WHERE identity = \?`).
					WithArgs("file:///a").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
		},
		{
			name: "second insert fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM tags WHERE identity = \?`).
					WithArgs("file:///a").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO tags`).
					WithArgs("file:///a", 0, "#x").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO tags`).
					WithArgs("file:///a", 1, "#y").
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
		},
		{
			name: "commit fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM tags WHERE identity = \?`).
					WithArgs("file:///a").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO tags`).
					WithArgs("file:///a", 0, "#x").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO tags`).
					WithArgs("file:///a", 1, "#y").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit().WillReturnError(sql.ErrTxDone)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			s := NewStorageWithDB(db)
			err = s.Write(ctx, "file:///a", []string{"#x", "#y"})
			require.Error(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_ReadWithMock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantTags []string
		wantOK   bool
		wantErr  bool
	}{
		{
			name: "rows in order",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT tag FROM tags WHERE identity = \? ORDER BY position`).
					WithArgs("file:///a").
					WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("#b").AddRow("#a"))
			},
			wantTags: []string{"#b", "#a"},
			wantOK:   true,
		},
		{
			name: "no rows",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT tag FROM tags`).
					WithArgs("file:///a").
					WillReturnRows(sqlmock.NewRows([]string{"tag"}))
			},
		},
		{
			name: "query error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT tag FROM tags`).
					WithArgs("file:///a").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			tags, ok, err := NewStorageWithDB(db).Read(ctx, "file:///a")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantTags, tags)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_MoveRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM tags WHERE identity = \?`).
		WithArgs("new").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO tags`).
		WithArgs("new", 0, "#x").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tags WHERE identity = \?`).
		WithArgs("old").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err = NewStorageWithDB(db).Move(context.Background(), "old", "new", []string{"#x"})
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}
