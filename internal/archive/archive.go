// Package archive provides SQLite-based persistence for successful predictions.
// It is append-only and independent of the bounded in-memory session history.
// If opening the DB fails, the store falls back to in-memory storage.
package archive

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/comigor/sentiment-go/internal/logger"
	"github.com/comigor/sentiment-go/internal/prediction"
)

// Entry is one archived prediction.
type Entry struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	prediction.Result
}

// Store archives predictions.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	memory []Entry // in-memory fallback
}

var schema = []string{`CREATE TABLE IF NOT EXISTS predictions (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    sentiment TEXT NOT NULL,
    positive REAL NOT NULL,
    neutral REAL NOT NULL,
    negative REAL NOT NULL,
    text TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS predictions_session_ts ON predictions (session_id, timestamp);`,
}

// Open opens (and creates) the SQLite archive at path.
func Open(ctx context.Context, path string) *Store {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory archive", "error", err)
		return &Store{}
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.L.Warn("sqlite table creation failed; using in-memory archive", "error", err)
			db.Close()
			return &Store{}
		}
	}
	logger.L.Info("sqlite archive initialized", "path", path)
	return &Store{db: db}
}

// Persistent reports whether entries reach SQLite.
func (s *Store) Persistent() bool {
	return s.db != nil
}

// Record archives r under sessionID.
func (s *Store) Record(ctx context.Context, sessionID string, r prediction.Result) error {
	e := Entry{ID: uuid.NewString(), SessionID: sessionID, Result: r}
	if s.db != nil {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO predictions (id, session_id, sentiment, positive, neutral, negative, text, timestamp) VALUES (?,?,?,?,?,?,?,?);`,
			e.ID, e.SessionID, string(r.Sentiment), r.Confidence.Positive, r.Confidence.Neutral, r.Confidence.Negative, r.Text, r.Timestamp)
		return err
	}

	s.mu.Lock()
	s.memory = append(s.memory, e)
	s.mu.Unlock()
	return nil
}

// Filter selects archived entries. Zero fields do not filter.
type Filter struct {
	SessionID string
	// Since keeps entries recorded at or after this time.
	Since time.Time
	// Limit caps the number of entries; <= 0 means no limit.
	Limit int
}

func (f Filter) cutoff() int64 {
	if f.Since.IsZero() {
		return 0
	}
	return f.Since.UnixMilli()
}

// Query returns the entries matching f, newest first. Entries with the same
// timestamp are ordered by most recent insertion.
func (s *Store) Query(ctx context.Context, f Filter) ([]Entry, error) {
	if s.db != nil {
		return s.query(ctx, f)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cut := f.cutoff()
	var out []Entry
	for i := len(s.memory) - 1; i >= 0; i-- {
		e := s.memory[i]
		if f.SessionID != "" && e.SessionID != f.SessionID {
			continue
		}
		if e.Timestamp < cut {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// List returns up to limit entries, newest first. An empty sessionID lists all
// sessions; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	return s.Query(ctx, Filter{SessionID: sessionID, Limit: limit})
}

// Since returns entries recorded at or after t across all sessions.
func (s *Store) Since(ctx context.Context, t time.Time) ([]Entry, error) {
	return s.Query(ctx, Filter{Since: t})
}

func (s *Store) query(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, sentiment, positive, neutral, negative, text, timestamp FROM predictions
         WHERE (? = '' OR session_id = ?) AND timestamp >= ?
         ORDER BY timestamp DESC, rowid DESC LIMIT ?;`,
		f.SessionID, f.SessionID, f.cutoff(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			sentiment string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &sentiment, &e.Confidence.Positive, &e.Confidence.Neutral, &e.Confidence.Negative, &e.Text, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Sentiment = prediction.Label(sentiment)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
