package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/cmdrecall/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open opens (creating if necessary) the database at dbPath and applies
// pending migrations. The parent directory is created for file-backed
// databases.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) InsertEmbedding(ctx context.Context, emb *Embedding) error {
	return insertEmbeddingWithQuerier(ctx, t.tx, emb)
}

// Command operations

// InsertCommand appends one command record and fills in its assigned id.
func (s *SQLiteStore) InsertCommand(ctx context.Context, cmd *types.CommandRecord) error {
	query := `
		INSERT INTO commands (command, timestamp, cwd, exit_code, keywords)
		VALUES (?, ?, ?, ?, ?)
	`
	var keywords interface{}
	if cmd.Keywords != "" {
		keywords = cmd.Keywords
	}
	result, err := s.db.ExecContext(ctx, query,
		cmd.Command, cmd.Timestamp, cmd.Cwd, cmd.ExitCode, keywords)
	if err != nil {
		return fmt.Errorf("failed to insert command: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	cmd.ID = id
	return nil
}

// ListCommands returns every command record ordered by id.
func (s *SQLiteStore) ListCommands(ctx context.Context) ([]*types.CommandRecord, error) {
	query := `
		SELECT id, command, timestamp, cwd, exit_code, keywords
		FROM commands
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanCommands(rows)
}

func (s *SQLiteStore) CountCommands(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM commands").Scan(&count)
	return count, err
}

// Embedding operations

// insertEmbeddingWithQuerier is the internal implementation that uses a querier.
// ON CONFLICT DO NOTHING keeps the table append-only: an existing embedding
// for a command is never replaced.
func insertEmbeddingWithQuerier(ctx context.Context, q querier, emb *Embedding) error {
	query := `
		INSERT INTO command_embeddings (command_id, embedding, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(command_id) DO NOTHING
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		emb.CommandID, EncodeVector(emb.Vector), emb.Dimension,
		emb.Provider, emb.Model, now)
	if err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}

	emb.CreatedAt = now
	return nil
}

func (s *SQLiteStore) InsertEmbedding(ctx context.Context, emb *Embedding) error {
	return insertEmbeddingWithQuerier(ctx, s.db, emb)
}

// GetEmbedding returns the decoded embedding for a command.
func (s *SQLiteStore) GetEmbedding(ctx context.Context, commandID int64) (*Embedding, error) {
	query := `
		SELECT command_id, embedding, dimension, provider, model, created_at
		FROM command_embeddings
		WHERE command_id = ?
	`
	var emb Embedding
	var blob []byte
	var provider, model sql.NullString
	err := s.db.QueryRowContext(ctx, query, commandID).Scan(
		&emb.CommandID, &blob, &emb.Dimension, &provider, &model, &emb.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	emb.Provider = provider.String
	emb.Model = model.String
	emb.Vector, err = DecodeVector(blob)
	if err != nil {
		return nil, err
	}
	return &emb, nil
}

// ListEmbeddingBlobs returns the raw vector blob per command id. Blobs are
// returned undecoded so callers decide how to treat malformed rows.
func (s *SQLiteStore) ListEmbeddingBlobs(ctx context.Context) (map[int64][]byte, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT command_id, embedding FROM command_embeddings")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	blobs := make(map[int64][]byte)
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		blobs[id] = blob
	}
	return blobs, rows.Err()
}

// PendingCommands returns commands that have no stored embedding, ordered
// by id. Re-running generation processes exactly this set.
func (s *SQLiteStore) PendingCommands(ctx context.Context) ([]*types.CommandRecord, error) {
	query := `
		SELECT id, command, timestamp, cwd, exit_code, keywords
		FROM commands
		WHERE id NOT IN (SELECT command_id FROM command_embeddings)
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanCommands(rows)
}

func (s *SQLiteStore) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM command_embeddings").Scan(&count)
	return count, err
}

// Generation bookkeeping

// RecordGenerationRun appends one generation_runs row.
func (s *SQLiteStore) RecordGenerationRun(ctx context.Context, run *GenerationRun) error {
	query := `
		INSERT INTO generation_runs (started_at, finished_at, provider, processed, failed, note)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		run.StartedAt, run.FinishedAt, run.Provider, run.Processed, run.Failed, run.Note)
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		run.ID = id
	}
	return nil
}

// scanCommands reads command rows into records
func scanCommands(rows *sql.Rows) ([]*types.CommandRecord, error) {
	commands := make([]*types.CommandRecord, 0)
	for rows.Next() {
		var cmd types.CommandRecord
		var timestamp, cwd, keywords sql.NullString
		var exitCode sql.NullInt64

		err := rows.Scan(&cmd.ID, &cmd.Command, &timestamp, &cwd, &exitCode, &keywords)
		if err != nil {
			return nil, err
		}

		cmd.Timestamp = timestamp.String
		cmd.Cwd = cwd.String
		cmd.ExitCode = int(exitCode.Int64)
		cmd.Keywords = keywords.String
		commands = append(commands, &cmd)
	}
	return commands, rows.Err()
}
