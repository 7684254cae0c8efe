package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tobot/pkg/tobot/internalerr"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// words / sentences / associations tables if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// One writer; keeps temp state and transactions on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS words (
	word TEXT UNIQUE
);

CREATE TABLE IF NOT EXISTS sentences (
	sentence TEXT UNIQUE,
	used INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS associations (
	word_id INT NOT NULL,
	sentence_id INT NOT NULL,
	weight REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS associations_word_id ON associations(word_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// HasSentence reports whether a sentence is stored
func (s *sqliteStore) HasSentence(ctx context.Context, sentence string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT rowid FROM sentences WHERE sentence = ?`, sentence).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// KnownWords returns the words that exist in the words table
func (s *sqliteStore) KnownWords(ctx context.Context, words []string) ([]string, error) {
	unique := uniqueStrings(words)
	if len(unique) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT word FROM words WHERE word IN (%s) ORDER BY word`, placeholders(len(unique)))
	rows, err := s.db.QueryContext(ctx, query, toArgs(unique)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var known []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		known = append(known, w)
	}
	return known, rows.Err()
}

// EdgesForWords returns all associations of the given words
func (s *sqliteStore) EdgesForWords(ctx context.Context, words []string) ([]store.Edge, error) {
	unique := uniqueStrings(words)
	if len(unique) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
SELECT words.word, associations.sentence_id, sentences.sentence, associations.weight
FROM words
INNER JOIN associations ON associations.word_id = words.rowid
INNER JOIN sentences ON sentences.rowid = associations.sentence_id
WHERE words.word IN (%s)
ORDER BY associations.sentence_id, associations.rowid;
`, placeholders(len(unique)))

	rows, err := s.db.QueryContext(ctx, query, toArgs(unique)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []store.Edge
	for rows.Next() {
		var e store.Edge
		if err := rows.Scan(&e.Word, &e.SentenceID, &e.Sentence, &e.Weight); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertTraining stores a sentence and its word associations in one transaction
func (s *sqliteStore) InsertTraining(ctx context.Context, t store.Training) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT rowid FROM sentences WHERE sentence = ?`, t.Sentence).Scan(&existing)
	if err == nil {
		return existing, internalerr.ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO sentences (sentence) VALUES (?)`, t.Sentence)
	if err != nil {
		return 0, err
	}
	sentenceID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	wordStmt, err := tx.PrepareContext(ctx, `
INSERT INTO words (word) VALUES (?)
ON CONFLICT(word) DO UPDATE SET word=excluded.word
RETURNING rowid;
`)
	if err != nil {
		return 0, err
	}
	defer wordStmt.Close()

	assocStmt, err := tx.PrepareContext(ctx, `INSERT INTO associations (word_id, sentence_id, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer assocStmt.Close()

	for _, ww := range t.Words {
		var wordID int64
		if err := wordStmt.QueryRowContext(ctx, ww.Word).Scan(&wordID); err != nil {
			return 0, fmt.Errorf("upsert word %q: %w", ww.Word, err)
		}
		if _, err := assocStmt.ExecContext(ctx, wordID, sentenceID, ww.Weight); err != nil {
			return 0, fmt.Errorf("insert association %q: %w", ww.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return sentenceID, nil
}

// Size counts the rows of each table
func (s *sqliteStore) Size(ctx context.Context) (store.Size, error) {
	var size store.Size
	err := s.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM sentences),
	(SELECT COUNT(*) FROM words),
	(SELECT COUNT(*) FROM associations);
`).Scan(&size.Sentences, &size.Words, &size.Associations)
	return size, err
}

// Dump reads every row of every table
func (s *sqliteStore) Dump(ctx context.Context) (store.Dump, error) {
	var d store.Dump

	rows, err := s.db.QueryContext(ctx, `SELECT rowid, sentence, used FROM sentences ORDER BY rowid`)
	if err != nil {
		return d, err
	}
	for rows.Next() {
		var r store.SentenceRow
		if err := rows.Scan(&r.ID, &r.Sentence, &r.Used); err != nil {
			rows.Close()
			return d, err
		}
		d.Sentences = append(d.Sentences, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return d, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT rowid, word FROM words ORDER BY rowid`)
	if err != nil {
		return d, err
	}
	for rows.Next() {
		var r store.WordRow
		if err := rows.Scan(&r.ID, &r.Word); err != nil {
			rows.Close()
			return d, err
		}
		d.Words = append(d.Words, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return d, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT word_id, sentence_id, weight FROM associations ORDER BY rowid`)
	if err != nil {
		return d, err
	}
	defer rows.Close()
	for rows.Next() {
		var r store.AssociationRow
		if err := rows.Scan(&r.WordID, &r.SentenceID, &r.Weight); err != nil {
			return d, err
		}
		d.Associations = append(d.Associations, r)
	}
	return d, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(vals []string) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

func uniqueStrings(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, val := range in {
		if val == "" {
			continue
		}
		if _, ok := set[val]; ok {
			continue
		}
		set[val] = struct{}{}
		out = append(out, val)
	}
	return out
}
