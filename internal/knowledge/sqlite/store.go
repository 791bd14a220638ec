// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studyhelper/studyhelper/internal/knowledge"
	sherr "github.com/studyhelper/studyhelper/pkg/errors"
)

// Compile-time interface check.
var _ knowledge.Store = (*Store)(nil)

// Store implements knowledge.Store backed by a single SQLite table. Records
// keep their order through the position column.
//
// The database is opened on first use, so a missing or unusable file shows
// up as a Load or Save error rather than failing construction.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// New returns a Store for the database at dbPath. Nothing is opened yet.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, sherr.New(sherr.CodeKnowledgeInvalidInput, "sqlite knowledge path is empty")
	}
	return &Store{path: dbPath, logger: slog.Default()}, nil
}

// conn opens the database and ensures the records table exists. Failures
// carry code so callers report them as load or save errors.
func (s *Store) conn(ctx context.Context, code sherr.Code) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, sherr.New(code, "sqlite knowledge store is closed", sherr.FieldPath(s.path))
	}
	if s.db != nil {
		return s.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, sherr.Wrap(err, code, "creating knowledge directory", sherr.FieldPath(s.path))
	}

	db, err := sql.Open("sqlite3", s.path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, sherr.Wrap(err, code, "opening sqlite db", sherr.FieldPath(s.path))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, sherr.Wrap(err, code, "pinging sqlite db", sherr.FieldPath(s.path))
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, sherr.Wrap(err, code, "migrating records table", sherr.FieldPath(s.path))
	}

	s.db = db
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
	position INTEGER PRIMARY KEY,
	question TEXT NOT NULL,
	answer   TEXT NOT NULL
);`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func (s *Store) Location() string { return s.path }

// Close closes the database if it was opened. Later calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Load returns every record in position order. A missing file or a fresh
// database yields an empty base.
func (s *Store) Load(ctx context.Context) (*knowledge.Base, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) && s.idle() {
		s.logger.Debug("knowledge base not found, starting empty", "path", s.path)
		return knowledge.NewBase(), nil
	}

	db, err := s.conn(ctx, sherr.CodeKnowledgeLoadFailure)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT question, answer FROM records ORDER BY position`)
	if err != nil {
		return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadFailure, "querying records", sherr.FieldPath(s.path))
	}
	defer func() { _ = rows.Close() }()

	base := knowledge.NewBase()
	for rows.Next() {
		var r knowledge.Record
		if err := rows.Scan(&r.Question, &r.Answer); err != nil {
			return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadInvalidFormat, "scanning record", sherr.FieldPath(s.path))
		}
		base.Append(r)
	}
	if err := rows.Err(); err != nil {
		return nil, sherr.Wrap(err, sherr.CodeKnowledgeLoadFailure, "iterating records", sherr.FieldPath(s.path))
	}

	s.logger.Debug("loaded knowledge base", "path", s.path, "records", base.Len())
	return base, nil
}

// Save replaces the table contents with base inside one transaction, so
// the stored rows always mirror the in-memory collection.
func (s *Store) Save(ctx context.Context, base *knowledge.Base) error {
	if base == nil {
		return sherr.New(sherr.CodeKnowledgeInvalidInput, "saving nil knowledge base", sherr.FieldPath(s.path))
	}

	db, err := s.conn(ctx, sherr.CodeKnowledgeSaveFailure)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "beginning transaction", sherr.FieldPath(s.path))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "clearing records", sherr.FieldPath(s.path))
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (position, question, answer) VALUES (?, ?, ?)`)
	if err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "preparing insert", sherr.FieldPath(s.path))
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range base.Records {
		if _, err := stmt.ExecContext(ctx, i, r.Question, r.Answer); err != nil {
			return sherr.Wrapf(err, sherr.CodeKnowledgeSaveFailure, "inserting record %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return sherr.Wrap(err, sherr.CodeKnowledgeSaveFailure, "committing records", sherr.FieldPath(s.path))
	}
	return nil
}

// idle reports whether the database has been neither opened nor closed.
func (s *Store) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db == nil && !s.closed
}
