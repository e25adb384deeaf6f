package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sqlStore serves both SQLite and Postgres; the only dialect difference the
// queries hit is the placeholder syntax.
type sqlStore struct {
	db       *sql.DB
	postgres bool
}

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
  user_id      TEXT   NOT NULL,
  doc_id       TEXT   NOT NULL,
  video_url    TEXT   NOT NULL,
  title        TEXT   NOT NULL DEFAULT '',
  transcript   TEXT   NOT NULL,
  summary      TEXT   NOT NULL,
  processed_at BIGINT NOT NULL,
  PRIMARY KEY (user_id, doc_id)
)`

const historyIndex = `CREATE INDEX IF NOT EXISTS history_user_processed ON history (user_id, processed_at DESC)`

const upsertQuery = `
INSERT INTO history (user_id, doc_id, video_url, title, transcript, summary, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, doc_id) DO UPDATE SET
  video_url    = excluded.video_url,
  title        = excluded.title,
  transcript   = excluded.transcript,
  summary      = excluded.summary,
  processed_at = excluded.processed_at`

const selectColumns = `SELECT user_id, doc_id, video_url, title, transcript, summary, processed_at FROM history`

func newSQLStore(ctx context.Context, db *sql.DB, postgres bool) (*sqlStore, error) {
	s := &sqlStore{db: db, postgres: postgres}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range []string{historySchema, historyIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *sqlStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Save(ctx context.Context, rec Record) error {
	rec = prepare(rec)

	_, err := s.db.ExecContext(ctx, s.rebind(upsertQuery),
		rec.UserID,
		rec.DocID,
		rec.VideoURL,
		rec.Title,
		rec.Transcript,
		rec.Summary,
		rec.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save history %s/%s: %w", rec.UserID, rec.DocID, err)
	}
	return nil
}

func (s *sqlStore) List(ctx context.Context, userID string) ([]Record, error) {
	query := s.rebind(selectColumns + ` WHERE user_id = ? ORDER BY processed_at DESC, doc_id ASC`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history rows: %w", err)
	}
	return records, nil
}

func (s *sqlStore) Get(ctx context.Context, userID, videoURL string) (Record, bool, error) {
	query := s.rebind(selectColumns + ` WHERE user_id = ? AND doc_id = ?`)

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, userID, DocID(videoURL)))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *sqlStore) Delete(ctx context.Context, userID, videoURL string) (bool, error) {
	docID := DocID(videoURL)
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM history WHERE user_id = ? AND doc_id = ?`), userID, docID)
	if err != nil {
		return false, fmt.Errorf("delete history %s/%s: %w", userID, docID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete history rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec         Record
		processedAt int64
	)
	err := row.Scan(&rec.UserID, &rec.DocID, &rec.VideoURL, &rec.Title, &rec.Transcript, &rec.Summary, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan history: %w", err)
	}
	rec.Timestamp = time.Unix(0, processedAt).UTC()
	return rec, nil
}
