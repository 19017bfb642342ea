// Package storage persists command history and embedding vectors in SQLite.
//
// Two drivers are supported via build tags: mattn/go-sqlite3 when built
// with cgo_sqlite, modernc.org/sqlite otherwise. The embeddings table is
// append-only; InsertEmbedding never overwrites an existing row.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/cmdrecall/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Embedding is one persisted dense vector keyed by command identity.
type Embedding struct {
	CommandID int64
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	CreatedAt time.Time
}

// GenerationRun is the bookkeeping row written by the embedding generation
// job. Informational only; it never suppresses a retry.
type GenerationRun struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Provider   string
	Processed  int
	Failed     int
	Note       string
}

// Store defines persistence operations for command history and embeddings.
type Store interface {
	// Command operations. InsertCommand exists for the capture shell and
	// for seeding tests; ranking never writes commands.
	InsertCommand(ctx context.Context, cmd *types.CommandRecord) error
	ListCommands(ctx context.Context) ([]*types.CommandRecord, error)
	CountCommands(ctx context.Context) (int, error)

	// Embedding operations
	InsertEmbedding(ctx context.Context, emb *Embedding) error
	GetEmbedding(ctx context.Context, commandID int64) (*Embedding, error)
	ListEmbeddingBlobs(ctx context.Context) (map[int64][]byte, error)
	PendingCommands(ctx context.Context) ([]*types.CommandRecord, error)
	CountEmbeddings(ctx context.Context) (int, error)

	// Generation bookkeeping
	RecordGenerationRun(ctx context.Context, run *GenerationRun) error

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction scope for batched embedding writes. A generation
// batch commits as one unit so a command ends with zero or one embedding
// rows even across failures.
type Tx interface {
	InsertEmbedding(ctx context.Context, emb *Embedding) error
	Commit() error
	Rollback() error
}
