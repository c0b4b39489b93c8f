package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *RunStore {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return NewRunStore(db)
}

func TestRunStore_CreateStartsPending(t *testing.T) {
	s := setupStore(t)

	run, err := s.Create()

	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Equal(t, StatusPending, run.Status)
	assert.Zero(t, run.Processed)
	assert.Nil(t, run.FinishedAt)
}

func TestRunStore_MarkRunning(t *testing.T) {
	s := setupStore(t)
	run, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.MarkRunning(run.ID))

	got, err := s.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
}

func TestRunStore_FinishSuccess(t *testing.T) {
	s := setupStore(t)
	run, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.Finish(run.ID, 3, nil))

	got, err := s.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, 3, got.Processed)
	assert.Empty(t, got.Error)
	assert.NotNil(t, got.FinishedAt)
}

func TestRunStore_FinishFailureKeepsProcessedCount(t *testing.T) {
	s := setupStore(t)
	run, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.Finish(run.ID, 2, errors.New("save processed IDs: disk full")))

	got, err := s.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, 2, got.Processed, "messages processed before the failure stay counted")
	assert.Contains(t, got.Error, "disk full")
}

func TestRunStore_RecentNewestFirst(t *testing.T) {
	s := setupStore(t)
	first, err := s.Create()
	require.NoError(t, err)
	second, err := s.Create()
	require.NoError(t, err)

	runs, err := s.Recent(10)

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestRunStore_GetMissing(t *testing.T) {
	s := setupStore(t)

	_, err := s.Get(999)

	assert.Error(t, err)
}
