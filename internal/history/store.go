// Package history persists the begin/end events of the pending registry
// so a flaky page can be diagnosed after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/db"
	"github.com/ziadkadry99/pageutil/internal/logging"
	"github.com/ziadkadry99/pageutil/internal/pending"
)

var log = logging.For("history")

// timeLayout keeps sub-second precision and still sorts as text.
const timeLayout = "2006-01-02 15:04:05.000000"

// Entry is a single recorded registry event.
type Entry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	OpID      string            `json:"op_id"`
	Kind      pending.EventKind `json:"kind"`
	Count     int               `json:"count"`
}

// Store provides access to recorded events.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts an entry. If entry.ID is empty a UUID is generated.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_events (id, timestamp, op_id, kind, count)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(timeLayout),
		entry.OpID,
		string(entry.Kind),
		entry.Count,
	)
	if err != nil {
		return errors.Wrap(err, "inserting pending event")
	}
	return nil
}

// Recorder returns a registry observer that logs every event. Write
// failures are reported but never reach the registry's callers.
func (s *Store) Recorder() pending.Observer {
	return func(e pending.Event) {
		err := s.Log(context.Background(), Entry{
			Timestamp: e.At,
			OpID:      e.ID,
			Kind:      e.Kind,
			Count:     e.Count,
		})
		if err != nil {
			log.WithError(err).WithField("op_id", e.ID).Warn("recording pending event")
		}
	}
}

// Filter controls which entries Query returns.
type Filter struct {
	OpID   string
	Kind   pending.EventKind
	Since  *time.Time
	Limit  int
	Offset int
}

// Query returns matching entries, newest first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.OpID != "" {
		clauses = append(clauses, "op_id = ?")
		args = append(args, filter.OpID)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}

	query := "SELECT id, timestamp, op_id, kind, count FROM pending_events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending events")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes entries older than before and returns how many
// rows went away.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_events WHERE timestamp < ?",
		before.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, errors.Wrap(err, "deleting old pending events")
	}
	return res.RowsAffected()
}

func scanRow(rows *sql.Rows) (*Entry, error) {
	var (
		e        Entry
		ts, kind string
	)
	if err := rows.Scan(&e.ID, &ts, &e.OpID, &kind, &e.Count); err != nil {
		return nil, errors.Wrap(err, "scanning pending event")
	}
	e.Kind = pending.EventKind(kind)

	// The driver hands DATETIME columns back as time.Time, which
	// database/sql formats as RFC 3339 when scanning into a string.
	for _, layout := range []string{time.RFC3339Nano, timeLayout, time.DateTime} {
		if t, err := time.Parse(layout, ts); err == nil {
			e.Timestamp = t
			break
		}
	}
	return &e, nil
}
