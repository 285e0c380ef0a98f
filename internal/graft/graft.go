// Package graft parses a "-S" grafts file (spec §6) — one commit per line,
// "child parent1 parent2 ..." — into a queryable override table consulted
// by the Commit Cache before a commit's own reported parents.
//
// The store is backed by an in-memory SQLite database rather than a plain
// Go map, mirroring the teacher's internal/index package's preference for
// a real queryable store over ad hoc map lookups (index.go's Rebuild/Open
// pattern), scaled down to the grafts file's much smaller shape. The
// database lives only for one CLI invocation — this is not the kind of
// persistent blame cache spec.md's Non-goals exclude, since nothing about
// blame *results* is cached, only the grafts file's own content.
package graft

import (
	"bufio"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jensroland/git-blamebot/internal/coretypes"
)

// Store holds parsed grafts, queryable by child digest.
type Store struct {
	db *sql.DB
}

// Load parses grafts text (already read from the -S file) and builds a
// Store backed by an in-memory SQLite database.
func Load(text string) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open grafts store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE grafts (child TEXT PRIMARY KEY, parents TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create grafts table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT OR REPLACE INTO grafts (child, parents) VALUES (?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer stmt.Close()

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			continue
		}
		child := fields[0]
		parents := strings.Join(fields[1:], " ")
		if _, err := stmt.Exec(child, parents); err != nil {
			db.Close()
			return nil, fmt.Errorf("load graft for %s: %w", child, err)
		}
	}
	if err := sc.Err(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Lookup returns the graft-overridden parent list for child, if one was
// loaded.
func (s *Store) Lookup(child coretypes.Digest) ([]coretypes.Digest, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	var parents string
	err := s.db.QueryRow(`SELECT parents FROM grafts WHERE child = ?`, string(child)).Scan(&parents)
	if err != nil {
		return nil, false
	}
	if strings.TrimSpace(parents) == "" {
		return []coretypes.Digest{}, true
	}
	fields := strings.Fields(parents)
	out := make([]coretypes.Digest, len(fields))
	for i, f := range fields {
		out[i] = coretypes.Digest(f)
	}
	return out, true
}

// Close releases the in-memory database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
