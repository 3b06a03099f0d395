package catalog

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/db"
)

// Store persists language strings in SQLite so a server can start from
// an imported snapshot instead of the pack files.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert writes every entry of component for lang in one transaction.
func (s *Store) Upsert(ctx context.Context, lang, component string, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lang_strings (lang, component, identifier, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(lang, component, identifier)
		DO UPDATE SET value = excluded.value, updated_at = datetime('now')`)
	if err != nil {
		return errors.Wrap(err, "preparing upsert")
	}
	defer stmt.Close()

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, lang, component, id, entries[id]); err != nil {
			return errors.Wrapf(err, "upserting %s/%s", component, id)
		}
	}
	return errors.Wrap(tx.Commit(), "committing strings")
}

// LoadTable populates t with every string stored for lang. It does not
// freeze t.
func (s *Store) LoadTable(ctx context.Context, lang string, t *Table) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT component, identifier, value FROM lang_strings
		WHERE lang = ? ORDER BY component, identifier`, lang)
	if err != nil {
		return 0, errors.Wrap(err, "querying strings")
	}
	defer rows.Close()

	pack := make(Pack)
	n := 0
	for rows.Next() {
		var component, id, value string
		if err := rows.Scan(&component, &id, &value); err != nil {
			return 0, errors.Wrap(err, "scanning string")
		}
		m, ok := pack[component]
		if !ok {
			m = make(map[string]string)
			pack[component] = m
		}
		m[id] = value
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "iterating strings")
	}

	if err := pack.Fill(t); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns how many strings are stored for lang.
func (s *Store) Count(ctx context.Context, lang string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lang_strings WHERE lang = ?`, lang).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "counting strings")
	}
	return n, nil
}

// Components lists the components stored for lang.
func (s *Store) Components(ctx context.Context, lang string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT component FROM lang_strings WHERE lang = ? ORDER BY component`, lang)
	if err != nil {
		return nil, errors.Wrap(err, "querying components")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning component")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
