// Package history provides a SQLite-backed journal of completed lookups.
//
// The journal is an audit trail, not a cache: nothing is ever answered from
// it. Each top-level resolution appends one row recording the trace ID, the
// domain, the outcome, and how much work the delegation walk performed.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ckousik/rootwalk/internal/helpers"
	"github.com/ckousik/rootwalk/internal/resolver"
)

//go:embed schema.sql
var schemaSQL string

// maxListLimit caps how many rows a single Recent call returns.
const maxListLimit = 500

// Entry is one journaled lookup.
type Entry struct {
	ID        int64     `json:"id"`
	TraceID   string    `json:"trace_id"`
	Domain    string    `json:"domain"`
	Found     bool      `json:"found"`
	Address   string    `json:"address,omitempty"`
	Queries   int       `json:"queries"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal wraps a SQLite database holding the lookup journal.
type Journal struct {
	conn *sql.DB
	mu   sync.Mutex // Serializes writes
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	// WAL mode keeps reads from blocking the write path.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(time.Hour)

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &Journal{conn: conn}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.conn.Close()
}

// Record appends one completed lookup to the journal.
func (j *Journal) Record(l resolver.Lookup) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	address := ""
	if l.Found {
		address = l.Addr.String()
	}
	_, err := j.conn.Exec(
		`INSERT INTO lookups (trace_id, domain, found, address, queries, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		l.TraceID, l.Domain, l.Found, address, l.Queries, l.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record lookup: %w", err)
	}
	return nil
}

// Recent returns up to limit journal entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	limit = helpers.ClampInt(limit, 1, maxListLimit)

	rows, err := j.conn.Query(
		`SELECT id, trace_id, domain, found, address, queries, duration_ms, created_at
		 FROM lookups ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list lookups: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TraceID, &e.Domain, &e.Found, &e.Address, &e.Queries, &e.Duration, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lookup row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of journaled lookups.
func (j *Journal) Count() (int64, error) {
	var n int64
	if err := j.conn.QueryRow(`SELECT COUNT(*) FROM lookups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lookups: %w", err)
	}
	return n, nil
}

// Health checks database connectivity.
func (j *Journal) Health() error {
	return j.conn.Ping()
}
