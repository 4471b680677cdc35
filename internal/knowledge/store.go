// Package knowledge is the local passage index backing chat answers.
package knowledge

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `CREATE VIRTUAL TABLE IF NOT EXISTS passages USING fts5(
	source UNINDEXED,
	chunk UNINDEXED,
	content,
	tokenize = 'porter unicode61'
)`

// Passage is one chunk of an ingested document.
type Passage struct {
	Source  string
	Chunk   int
	Content string
}

type Stats struct {
	Passages int
	Sources  int
}

// Store is an SQLite FTS5 index of passages.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create knowledge base directory")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open knowledge base %s", path)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create passages table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ingest indexes every .md and .txt file under the given paths and returns
// the number of passages written. Re-ingesting a file replaces its passages.
func (s *Store) Ingest(ctx context.Context, paths ...string) (int, error) {
	total := 0
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !ingestible(path) {
				return nil
			}
			n, err := s.IngestFile(ctx, path)
			if err != nil {
				return err
			}
			total += n
			return nil
		})
		if err != nil {
			return total, errors.Wrapf(err, "failed to ingest %s", root)
		}
	}
	return total, nil
}

func ingestible(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return true
	}
	return false
}

// IngestFile replaces the passages of one document.
func (s *Store) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", path)
	}
	chunks := Chunk(string(data), MaxPassageRunes)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE source = ?`, path); err != nil {
		return 0, errors.Wrap(err, "failed to clear old passages")
	}
	for i, chunk := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO passages (source, chunk, content) VALUES (?, ?, ?)`,
			path, i, chunk); err != nil {
			return 0, errors.Wrap(err, "failed to insert passage")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit passages")
	}

	log.Debug().Str("source", path).Int("passages", len(chunks)).Msg("ingested document")
	return len(chunks), nil
}

// Search returns up to k passages matching any term of query, best first.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	match := MatchExpr(query)
	if match == "" || k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, chunk, content FROM passages
		 WHERE passages MATCH ?
		 ORDER BY bm25(passages)
		 LIMIT ?`, match, k)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search passages")
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.Source, &p.Chunk, &p.Content); err != nil {
			return nil, errors.Wrap(err, "failed to scan passage")
		}
		passages = append(passages, p)
	}
	return passages, errors.Wrap(rows.Err(), "failed to read passages")
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source) FROM passages`).Scan(&st.Passages, &st.Sources)
	if err != nil {
		return st, errors.Wrap(err, "failed to count passages")
	}
	return st, nil
}
