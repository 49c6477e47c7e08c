// Package sqlite keeps user documents in a single local SQLite file. Each
// document is stored as a JSON body keyed by user, collection and id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/PabloGalante/serene/internal/domain"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS documents (
    user_id    TEXT NOT NULL,
    collection TEXT NOT NULL,
    doc_id     TEXT NOT NULL,
    body       TEXT NOT NULL,
    updated_at INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, collection, doc_id)
);
`

type Store struct {
	db  *sql.DB
	now func() domain.Millis
}

// Open creates the database file and its parent directory when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer keeps the read-modify-write in AppendChatMessage serial.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:  db,
		now: func() domain.Millis { return domain.MillisOf(time.Now()) },
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetAll(ctx context.Context, userID domain.UserID, col domain.Collection) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE user_id = ? AND collection = ? ORDER BY doc_id`,
		string(userID), string(col))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", col, err)
	}
	defer rows.Close()

	out := []domain.Document{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", col, err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Store) GetOne(ctx context.Context, userID domain.UserID, col domain.Collection, id string) (domain.Document, error) {
	return getOne(ctx, s.db, userID, col, id)
}

func (s *Store) Put(ctx context.Context, userID domain.UserID, col domain.Collection, id string, doc domain.Document) error {
	return put(ctx, s.db, userID, col, id, doc, s.now())
}

func (s *Store) Delete(ctx context.Context, userID domain.UserID, col domain.Collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`,
		string(userID), string(col), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", col, id, err)
	}
	return nil
}

// AppendChatMessage adds msg to the day's document unless an equal message
// is already there.
func (s *Store) AppendChatMessage(ctx context.Context, userID domain.UserID, dayKey string, msg domain.Document) error {
	stored, err := roundTrip(msg)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	day, err := getOne(ctx, tx, userID, domain.CollectionDailyChats, dayKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		day = domain.Document{"date": dayKey, "messages": []any{}}
	case err != nil:
		return err
	}

	messages, _ := day["messages"].([]any)
	dup := false
	for _, existing := range messages {
		if reflect.DeepEqual(existing, map[string]any(stored)) {
			dup = true
			break
		}
	}
	if !dup {
		day["messages"] = append(messages, map[string]any(stored))
	}

	now := s.now()
	day["lastUpdated"] = now
	if err := put(ctx, tx, userID, domain.CollectionDailyChats, dayKey, day, now); err != nil {
		return err
	}
	return tx.Commit()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getOne(ctx context.Context, q querier, userID domain.UserID, col domain.Collection, id string) (domain.Document, error) {
	var body string
	err := q.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`,
		string(userID), string(col), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", col, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", col, id, err)
	}
	return decodeBody(body)
}

func put(ctx context.Context, q querier, userID domain.UserID, col domain.Collection, id string, doc domain.Document, now domain.Millis) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", col, id, err)
	}
	_, err = q.ExecContext(ctx, `
INSERT INTO documents (user_id, collection, doc_id, body, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, collection, doc_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(userID), string(col), id, string(body), int64(now))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", col, id, err)
	}
	return nil
}

func decodeBody(body string) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func roundTrip(doc domain.Document) (domain.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return decodeBody(string(raw))
}
