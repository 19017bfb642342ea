// Package generator implements the offline embedding generation job:
// pending commands are encoded in batches and appended to the embedding
// store, each batch committed as one transaction.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/cmdrecall/internal/embedder"
	"github.com/dshills/cmdrecall/internal/storage"
	"github.com/dshills/cmdrecall/pkg/types"
)

// DefaultBatchSize is the number of commands encoded and committed per
// transaction.
const DefaultBatchSize = 100

// ErrGenerationInProgress is returned when a run is already active in this
// process.
var ErrGenerationInProgress = errors.New("embedding generation already in progress")

// Config contains configuration for the generation job.
type Config struct {
	BatchSize int // Commands per encode+commit unit (default: 100)
	Workers   int // Concurrent batch workers (default: runtime.NumCPU())
}

// Statistics summarizes one generation run.
type Statistics struct {
	Pending       int
	Embedded      int
	FailedBatches int
	Duration      time.Duration
	ErrorMessages []string
}

// Generator coordinates the generation pipeline: pending -> encode -> append.
type Generator struct {
	store    storage.Store
	embedder embedder.Embedder
	lock     *RunLock
}

// New creates a Generator over the given store and embedding provider with
// its own run lock.
func New(store storage.Store, emb embedder.Embedder) *Generator {
	return NewWithLock(store, emb, &RunLock{})
}

// NewWithLock creates a Generator sharing a caller-owned lock. Callers that
// construct a Generator per request (the MCP server does) pass the same
// lock each time so concurrent runs still serialize.
func NewWithLock(store storage.Store, emb embedder.Embedder, lock *RunLock) *Generator {
	return &Generator{
		store:    store,
		embedder: emb,
		lock:     lock,
	}
}

// Run embeds every command that lacks a stored vector. Already-embedded
// commands are never touched, so rerunning after an interruption only
// processes the remainder. A bookkeeping row is recorded whether or not
// the run fully succeeds.
func (g *Generator) Run(ctx context.Context, config *Config) (*Statistics, error) {
	if !g.lock.TryAcquire() {
		return nil, ErrGenerationInProgress
	}
	defer g.lock.Release()

	if config == nil {
		config = &Config{}
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	pending, err := g.store.PendingCommands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending commands: %w", err)
	}
	stats.Pending = len(pending)

	if len(pending) == 0 {
		stats.Duration = time.Since(startTime)
		g.recordRun(ctx, startTime, stats)
		return stats, nil
	}

	log.Printf("DEBUG: embedding %d pending commands with %s", len(pending), g.embedder.Provider())

	var (
		embedded int32
		mu       sync.Mutex // Protect stats.ErrorMessages
	)

	gr, gctx := errgroup.WithContext(ctx)
	gr.SetLimit(workers)

	for i := 0; i < len(pending); i += batchSize {
		end := i + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[i:end]

		gr.Go(func() error {
			if err := g.embedBatch(gctx, batch); err != nil {
				mu.Lock()
				stats.FailedBatches++
				stats.ErrorMessages = append(stats.ErrorMessages, err.Error())
				mu.Unlock()
				return err
			}
			atomic.AddInt32(&embedded, int32(len(batch)))
			return nil
		})
	}

	runErr := gr.Wait()

	stats.Embedded = int(atomic.LoadInt32(&embedded))
	stats.Duration = time.Since(startTime)
	g.recordRun(ctx, startTime, stats)

	if runErr != nil {
		return stats, fmt.Errorf("generation run incomplete: %w", runErr)
	}
	return stats, nil
}

// embedBatch encodes one batch and appends the vectors inside a single
// transaction. Commands that concurrently received an embedding are
// skipped by the append-only insert, not overwritten.
func (g *Generator) embedBatch(ctx context.Context, batch []*types.CommandRecord) error {
	texts := make([]string, len(batch))
	for i, cmd := range batch {
		texts[i] = cmd.EnrichedText()
	}

	resp, err := g.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(resp.Embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: want %d, got %d", len(batch), len(resp.Embeddings))
	}

	tx, err := g.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for i, cmd := range batch {
		emb := resp.Embeddings[i]
		record := &storage.Embedding{
			CommandID: cmd.ID,
			Vector:    emb.Vector,
			Dimension: emb.Dimension,
			Provider:  resp.Provider,
			Model:     resp.Model,
			CreatedAt: now,
		}
		if err := tx.InsertEmbedding(ctx, record); err != nil {
			return fmt.Errorf("failed to store embedding for command %d: %w", cmd.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// recordRun writes the bookkeeping row. Failure to record is logged, not
// propagated; the row never gates future runs.
func (g *Generator) recordRun(ctx context.Context, startedAt time.Time, stats *Statistics) {
	note := ""
	if len(stats.ErrorMessages) > 0 {
		note = stats.ErrorMessages[0]
	}
	run := &storage.GenerationRun{
		StartedAt:  startedAt.UTC(),
		FinishedAt: time.Now().UTC(),
		Provider:   g.embedder.Provider(),
		Processed:  stats.Embedded,
		Failed:     stats.FailedBatches,
		Note:       note,
	}
	if err := g.store.RecordGenerationRun(ctx, run); err != nil {
		log.Printf("DEBUG: failed to record generation run: %v", err)
	}
}
