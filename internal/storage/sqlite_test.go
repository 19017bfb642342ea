package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/cmdrecall/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	store, err := Open(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertTestCommand(t *testing.T, store *SQLiteStore, text, keywords string) *types.CommandRecord {
	cmd := &types.CommandRecord{
		Command:   text,
		Timestamp: "2024-01-01T10:00:00Z",
		Cwd:       "/home/user",
		ExitCode:  0,
		Keywords:  keywords,
	}
	require.NoError(t, store.InsertCommand(context.Background(), cmd))
	return cmd
}

func TestOpen(t *testing.T) {
	store := setupTestDB(t)
	assert.NotNil(t, store.db)
}

func TestInsertCommand(t *testing.T) {
	store := setupTestDB(t)

	cmd := insertTestCommand(t, store, "docker ps", "")
	assert.Greater(t, cmd.ID, int64(0))

	count, err := store.CountCommands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListCommands(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	first := insertTestCommand(t, store, "docker ps", "docker container")
	second := insertTestCommand(t, store, "git status", "")

	commands, err := store.ListCommands(ctx)
	require.NoError(t, err)
	require.Len(t, commands, 2)

	assert.Equal(t, first.ID, commands[0].ID)
	assert.Equal(t, "docker ps", commands[0].Command)
	assert.Equal(t, "docker container", commands[0].Keywords)
	assert.Equal(t, second.ID, commands[1].ID)
	assert.Empty(t, commands[1].Keywords)
}

func TestInsertEmbedding_AppendOnly(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	cmd := insertTestCommand(t, store, "docker ps", "")

	original := &Embedding{
		CommandID: cmd.ID,
		Vector:    []float32{1, 2, 3},
		Dimension: 3,
		Provider:  "local",
		Model:     "hashed-bow-384",
	}
	require.NoError(t, store.InsertEmbedding(ctx, original))

	// A second insert for the same command must not replace the stored row.
	replacement := &Embedding{
		CommandID: cmd.ID,
		Vector:    []float32{9, 9, 9},
		Dimension: 3,
		Provider:  "local",
		Model:     "hashed-bow-384",
	}
	require.NoError(t, store.InsertEmbedding(ctx, replacement))

	stored, err := store.GetEmbedding(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, stored.Vector)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetEmbedding_NotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.GetEmbedding(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingCommands(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	embedded := insertTestCommand(t, store, "docker ps", "")
	pending := insertTestCommand(t, store, "git status", "")

	require.NoError(t, store.InsertEmbedding(ctx, &Embedding{
		CommandID: embedded.ID,
		Vector:    []float32{1, 0},
		Dimension: 2,
	}))

	remaining, err := store.PendingCommands(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, pending.ID, remaining[0].ID)
}

func TestListEmbeddingBlobs(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	cmd := insertTestCommand(t, store, "docker ps", "")
	require.NoError(t, store.InsertEmbedding(ctx, &Embedding{
		CommandID: cmd.ID,
		Vector:    []float32{0.5, 0.5},
		Dimension: 2,
	}))

	blobs, err := store.ListEmbeddingBlobs(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 1)

	vec, err := DecodeVector(blobs[cmd.ID])
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestEmbeddingTx_CommitAndRollback(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	first := insertTestCommand(t, store, "docker ps", "")
	second := insertTestCommand(t, store, "git status", "")

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertEmbedding(ctx, &Embedding{CommandID: first.ID, Vector: []float32{1}, Dimension: 1}))
	require.NoError(t, tx.Rollback())

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "rolled back batch leaves no rows")

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertEmbedding(ctx, &Embedding{CommandID: first.ID, Vector: []float32{1}, Dimension: 1}))
	require.NoError(t, tx.InsertEmbedding(ctx, &Embedding{CommandID: second.ID, Vector: []float32{2}, Dimension: 1}))
	require.NoError(t, tx.Commit())

	count, err = store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordGenerationRun(t *testing.T) {
	store := setupTestDB(t)

	run := &GenerationRun{
		StartedAt:  time.Now().Add(-time.Minute).UTC(),
		FinishedAt: time.Now().UTC(),
		Provider:   "local",
		Processed:  10,
		Failed:     0,
	}
	require.NoError(t, store.RecordGenerationRun(context.Background(), run))
	assert.Greater(t, run.ID, int64(0))
}
