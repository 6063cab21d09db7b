package datasource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// loadConcurrency bounds the child queries issued at once while loading.
const loadConcurrency = 4

var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id       TEXT PRIMARY KEY,
		title    TEXT NOT NULL DEFAULT '',
		body     TEXT NOT NULL DEFAULT '',
		kind     TEXT NOT NULL DEFAULT 'entry',
		header   TEXT NOT NULL DEFAULT '',
		parent   TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		expanded INTEGER NOT NULL DEFAULT 0,
		hidden   INTEGER NOT NULL DEFAULT 0,
		disabled INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS items_parent ON items (parent, position)`,
}

// SQLite is an item store in a SQLite database, one row per record.
type SQLite struct {
	db       *sql.DB
	path     string
	readOnly bool
	log      logrus.FieldLogger
}

// OpenSQLite opens the database at path. A writable store creates the
// schema when missing.
func OpenSQLite(path string, readOnly bool, log logrus.FieldLogger) (*SQLite, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	if readOnly {
		dsn += "&mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	s := &SQLite{db: db, path: path, readOnly: readOnly, log: log}
	if !readOnly {
		for _, stmt := range schema {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("creating schema in %s: %w", path, err)
			}
		}
	}
	for _, pragma := range []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.WithError(err).WithField("pragma", pragma).Debug("pragma not applied")
		}
	}
	return s, nil
}

func (s *SQLite) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectChildren = `
	SELECT id, title, body, kind, header, parent, expanded, hidden, disabled
	FROM items
	WHERE parent = ?
	ORDER BY position, rowid`

func (s *SQLite) children(ctx context.Context, parent string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectChildren, parent)
	if err != nil {
		return nil, fmt.Errorf("query children of %q: %w", parent, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var kind string
		if err := rows.Scan(&r.ID, &r.Title, &r.Body, &kind, &r.Header, &r.Parent,
			&r.Expanded, &r.Hidden, &r.Disabled); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		r.Kind = Kind(kind)
		if r.Kind == KindEntry {
			r.Kind = ""
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return out, nil
}

// Load reads the records level by level: top-level rows first, then the
// children of every group found so far, queried concurrently.
func (s *SQLite) Load(ctx context.Context) ([]Record, error) {
	top, err := s.children(ctx, "")
	if err != nil {
		return nil, err
	}
	out := top
	frontier := groupIDs(top)
	for len(frontier) > 0 {
		results := make([][]Record, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(loadConcurrency)
		for i, id := range frontier {
			g.Go(func() error {
				rs, err := s.children(gctx, id)
				results[i] = rs
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, rs := range results {
			out = append(out, rs...)
			frontier = append(frontier, groupIDs(rs)...)
		}
	}
	return out, nil
}

func groupIDs(records []Record) []string {
	var ids []string
	for _, r := range records {
		if r.Kind == KindGroup {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Insert stores records, replacing rows with the same id. Positions
// follow record order within each parent.
func (s *SQLite) Insert(ctx context.Context, records []Record) error {
	if s.readOnly {
		return ErrReadOnly
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items
			(id, title, body, kind, header, parent, position, expanded, hidden, disabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	next := make(map[string]int)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %q: %w", r.ID, err)
		}
		kind := r.Kind
		if kind == "" {
			kind = KindEntry
		}
		pos := next[r.Parent]
		next[r.Parent] = pos + 1
		if _, err := stmt.ExecContext(ctx, r.ID, r.Title, r.Body, string(kind), r.Header, r.Parent,
			pos, r.Expanded, r.Hidden, r.Disabled); err != nil {
			return fmt.Errorf("inserting %q: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes the rows and their descendants in one transaction and
// clears header references to removed headers.
func (s *SQLite) Delete(ctx context.Context, ids []string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM items WHERE id = ?`, id).Scan(&one)
		if err == sql.ErrNoRows {
			return fmt.Errorf("item %q: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
	}

	var removed int64
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `
			WITH RECURSIVE sub(id) AS (
				SELECT ?
				UNION ALL
				SELECT items.id FROM items JOIN sub ON items.parent = sub.id
			)
			DELETE FROM items WHERE id IN (SELECT id FROM sub)`, id)
		if err != nil {
			return fmt.Errorf("deleting %q: %w", id, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE items SET header = ''
		WHERE header <> '' AND header NOT IN (SELECT id FROM items)`); err != nil {
		return fmt.Errorf("clearing header references: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"path": s.path, "removed": removed}).Debug("records deleted")
	return nil
}

// Count returns the number of stored records.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
