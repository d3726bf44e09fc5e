// Package sqlstore keeps records in SQLite or PostgreSQL. The full record
// is stored as JSON next to a few indexed columns used for listing.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/pbhp/internal/model"
	"github.com/ppiankov/pbhp/internal/store"
)

// Fixed width so the text column sorts chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS pbhp_records (
	record_id   TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	risk_class  TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	body        TEXT NOT NULL
)`

// Store is a database/sql backed store.Store.
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects using driver "sqlite" or "postgres" and migrates.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("store: unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}
	s, err := New(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open handle and creates the table if needed.
func New(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, postgres: driver == "postgres"}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Save(ctx context.Context, r model.Record) error {
	if err := store.ValidateID(r.RecordID); err != nil {
		return err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", r.RecordID, err)
	}
	q := s.rebind(`INSERT INTO pbhp_records (record_id, created_at, risk_class, outcome, body)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (record_id) DO UPDATE SET
	created_at = excluded.created_at,
	risk_class = excluded.risk_class,
	outcome = excluded.outcome,
	body = excluded.body`)
	_, err = s.db.ExecContext(ctx, q,
		r.RecordID,
		r.Timestamp.UTC().Format(timeLayout),
		r.HighestRiskClass.String(),
		string(r.DecisionOutcome),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("store: save record %s: %w", r.RecordID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM pbhp_records WHERE record_id = ?`), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("store: get record %s: %w", id, err)
	}
	return decode(id, body)
}

func (s *Store) List(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, body FROM pbhp_records ORDER BY created_at, record_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Record
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		r, err := decode(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	return out, nil
}

// CountByClass returns how many records reached each watermark.
func (s *Store) CountByClass(ctx context.Context) (map[model.RiskClass]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT risk_class, COUNT(*) FROM pbhp_records GROUP BY risk_class`)
	if err != nil {
		return nil, fmt.Errorf("store: count records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[model.RiskClass]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("store: scan count: %w", err)
		}
		rc, err := model.ParseRiskClass(label)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		counts[rc] = n
	}
	return counts, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func decode(id, body string) (model.Record, error) {
	var r model.Record
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return model.Record{}, fmt.Errorf("store: corrupt record %s: %w", id, err)
	}
	return r, nil
}

var _ store.Store = (*Store)(nil)
