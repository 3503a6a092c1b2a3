package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListExpansions(t *testing.T) {
	db := openTestDB(t)

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := db.InsertExpansion(&Expansion{
		ExpandedAt: first, Input: "a.txt", ResolvedPath: "/p/a.txt",
		Kind: KindOK, Text: "hello", Lines: 2, Kept: 1,
	})
	require.NoError(t, err)
	_, err = db.InsertExpansion(&Expansion{
		ExpandedAt: first.Add(time.Minute), Input: "b.txt", ResolvedPath: "/p/b.txt",
		Kind: "read_failure", Message: "ReadFromFile could not read file: /p/b.txt",
	})
	require.NoError(t, err)

	all, err := db.ListExpansions(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b.txt", all[0].Input, "newest first")
	assert.Equal(t, "hello", all[1].Text)
	assert.True(t, all[1].ExpandedAt.Equal(first))

	failures, err := db.ListExpansions(Filter{Kind: "read_failure"})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "/p/b.txt", failures[0].ResolvedPath)

	byPath, err := db.ListExpansions(Filter{Path: "/p/a.txt", Limit: 5})
	require.NoError(t, err)
	require.Len(t, byPath, 1)

	limited, err := db.ListExpansions(Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPruneExpansions(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		_, err := db.InsertExpansion(&Expansion{Input: "x", Kind: KindOK})
		require.NoError(t, err)
	}

	n, err := db.PruneExpansions(2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	rest, err := db.ListExpansions(Filter{})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	_, err = db.PruneExpansions(-1)
	assert.Error(t, err)
}

func TestRecorder_WithMacro(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "args.txt"), []byte("# c\n--flag   value\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("# nothing\n"), 0o644))

	m := macro.New(nil, nil, dir)
	m.Recorder = NewRecorder(db)

	m.Expand("args.txt")
	m.Expand("empty.txt")
	m.Expand("gone.txt")
	m.Expand("")

	rows, err := db.ListExpansions(Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "missing_path", rows[0].Kind)
	assert.Equal(t, "read_failure", rows[1].Kind)
	assert.Equal(t, filepath.Join(dir, "gone.txt"), rows[1].ResolvedPath)
	assert.Equal(t, KindEmpty, rows[2].Kind)
	assert.Equal(t, KindOK, rows[3].Kind)
	assert.Equal(t, "--flag value", rows[3].Text)
	assert.Equal(t, 1, rows[3].Kept)
}

func TestFromOutcome_ForeignError(t *testing.T) {
	e := FromOutcome(macro.Outcome{Input: "x", Err: errors.New("boom")})
	assert.Equal(t, normalize.KindReadFailure.String(), e.Kind)
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	// Reopening runs migrations against an existing schema.
	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestRecorder_ConcurrentFileDB(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := NewRecorder(db)
	const n = 64

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- rec.Record(macro.Outcome{
				Input:  "args.txt",
				Result: normalize.Result{Path: "/p/args.txt", Text: "x", Lines: 1, Kept: 1},
				At:     time.Now(),
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	rows, err := db.ListExpansions(Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, n)
}

func TestOpen_SecondHandleWaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for _, db := range []*DB{a, b} {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := db.InsertExpansion(&Expansion{Input: "x", Kind: KindOK})
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	rows, err := a.ListExpansions(Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 40)
}
