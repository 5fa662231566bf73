package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chat-harvester/internal/application/port/output"
	"chat-harvester/internal/domain/entity"

	_ "modernc.org/sqlite"
)

var _ output.ResultStore = (*SQLiteStore)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	storage_key TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

type SQLiteStore struct {
	db  *sql.DB
	key string
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; the loop is sequential anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, key: entity.ResultStorageKey}, nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]entity.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer, created_at FROM results WHERE storage_key = ? ORDER BY id`, s.key)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var records []entity.ResultRecord
	for rows.Next() {
		var rec entity.ResultRecord
		var ts string
		if err := rows.Scan(&rec.Question, &rec.Answer, &ts); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, rec entity.ResultRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (storage_key, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		s.key, rec.Question, rec.Answer, rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE storage_key = ?`, s.key)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
