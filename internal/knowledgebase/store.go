// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledgebase maintains a local SQLite corpus of commercial
// real-estate background articles. It backs the fallback adapter's
// knowledge-base search so general queries get deterministic local
// context before any network provider is consulted.
package knowledgebase

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cre-research/pkg/types"
)

const defaultMaxResults = 5

// Store manages the knowledge base SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the knowledge base database at cfg.Path and
// creates the schema if it does not exist.
func Open(cfg types.KnowledgeBaseConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join("kb", "cre.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating knowledge base directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			authors TEXT,
			date TEXT,
			link TEXT,
			body TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, body, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// seedArticle is the YAML shape of one corpus entry.
type seedArticle struct {
	Title   string `yaml:"title"`
	Authors string `yaml:"authors"`
	Date    string `yaml:"date"`
	Link    string `yaml:"link"`
	Body    string `yaml:"body"`
}

// Seed loads articles from a YAML file into the corpus. Existing
// rows are kept; seeding is additive.
func (s *Store) Seed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading seed file: %w", err)
	}

	var articles []seedArticle
	if err := yaml.Unmarshal(data, &articles); err != nil {
		return 0, fmt.Errorf("parsing seed file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (title, authors, date, link, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, a := range articles {
		if a.Title == "" || a.Body == "" {
			return inserted, fmt.Errorf("seed article %d: title and body are required", i)
		}
		if _, err := stmt.ExecContext(ctx, a.Title, a.Authors, a.Date, a.Link, a.Body); err != nil {
			return inserted, fmt.Errorf("inserting %q: %w", a.Title, err)
		}
		inserted++
	}

	return inserted, tx.Commit()
}

// Search returns corpus articles matching the query as research
// records, ranked by FTS relevance. Query terms are stemmed and
// prefix-expanded so "certifications" finds "certified".
func (s *Store) Search(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.title, a.authors, a.date, a.link, a.body
		FROM articles_fts
		JOIN articles a ON a.rowid = articles_fts.rowid
		WHERE articles_fts MATCH ?
		ORDER BY articles_fts.rank
		LIMIT ?`,
		match, s.maxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var records []types.ResearchRecord
	for rows.Next() {
		var title, body string
		var authors, date, link sql.NullString
		if err := rows.Scan(&title, &authors, &date, &link, &body); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r := types.ResearchRecord{
			Title:   title,
			Authors: authors.String,
			Date:    date.String,
			Source:  "CRE Knowledge Base",
			Link:    "#",
			Summary: truncate(body, 400),
			Kind:    types.KindWebContent,
		}
		if link.Valid && link.String != "" {
			r.Link = link.String
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// buildMatchQuery tokenizes the query, drops stop words, stems each
// token, and joins the stems as OR'd prefix terms for FTS5
// (e.g. "leasing rates" becomes `"leas"* OR "rate"*`).
func buildMatchQuery(query string) string {
	var terms []string
	seen := make(map[string]bool)

	for _, token := range tokenize(query) {
		if snowballeng.IsStopWord(token) {
			continue
		}
		stem := snowballeng.Stem(token, false)
		if stem == "" || seen[stem] {
			continue
		}
		seen[stem] = true
		terms = append(terms, fmt.Sprintf(`"%s"*`, stem))
	}

	return strings.Join(terms, " OR ")
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
