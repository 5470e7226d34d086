package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"school-job-scout/internal/dedup"
	"school-job-scout/internal/scraper"

	"github.com/google/uuid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id               TEXT PRIMARY KEY,
	status           TEXT NOT NULL,
	source           TEXT NOT NULL,
	started_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at     TEXT,
	total_jobs_found INTEGER,
	new_jobs_found   INTEGER,
	error_message    TEXT
);
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY,
	district      TEXT NOT NULL,
	title         TEXT NOT NULL,
	url           TEXT NOT NULL,
	portal_type   TEXT,
	position_type TEXT,
	location      TEXT,
	category      TEXT,
	search_term   TEXT,
	first_seen_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	is_active     INTEGER NOT NULL DEFAULT 1,
	notified      INTEGER NOT NULL DEFAULT 0,
	UNIQUE (district, title)
);
CREATE TABLE IF NOT EXISTS notifications (
	id                TEXT PRIMARY KEY,
	scrape_run_id     TEXT REFERENCES scrape_runs(id),
	notification_type TEXT NOT NULL,
	jobs_count        INTEGER NOT NULL,
	success           INTEGER NOT NULL,
	error_message     TEXT,
	created_at        TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite is the single-file JobStore used when no Postgres is available.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &SQLite{db: db, path: path}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLite) CreateRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, "INSERT INTO scrape_runs (id, status, source) VALUES (?, ?, ?)", id, RunRunning, source); err != nil {
		return "", fmt.Errorf("create scrape run: %w", err)
	}
	return id, nil
}

func (s *SQLite) FinishRun(ctx context.Context, runID string, res RunResult) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs
		SET status = ?, completed_at = CURRENT_TIMESTAMP, total_jobs_found = ?, new_jobs_found = ?, error_message = ?
		WHERE id = ?`,
		res.Status, res.TotalJobs, res.NewJobs, nullable(res.Error), runID)
	if err != nil {
		return fmt.Errorf("finish scrape run: %w", err)
	}
	return nil
}

func (s *SQLite) UpsertJobs(ctx context.Context, jobs []scraper.Job) ([]StoredJob, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO jobs (id, district, title, url, portal_type, position_type, location, category, search_term, last_seen_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, 1)
		ON CONFLICT (district, title)
		DO UPDATE SET url = excluded.url, portal_type = excluded.portal_type, position_type = excluded.position_type,
			location = excluded.location, category = excluded.category, search_term = excluded.search_term,
			last_seen_at = CURRENT_TIMESTAMP, is_active = 1
		RETURNING id, notified`

	var pending []StoredJob
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		job.District = strings.TrimSpace(job.District)
		job.Title = strings.TrimSpace(job.Title)
		var (
			id       string
			notified bool
		)
		err := tx.QueryRowContext(ctx, query, uuid.NewString(), job.District, job.Title, job.URL, string(job.Source),
			nullable(job.PositionType), nullable(job.Location), nullable(job.Category), nullable(job.SearchTerm)).
			Scan(&id, &notified)
		if err != nil {
			return nil, fmt.Errorf("upsert job %q: %w", dedup.Key(job), err)
		}
		if !notified && !seen[id] {
			seen[id] = true
			pending = append(pending, StoredJob{ID: id, Job: job})
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	return pending, nil
}

func (s *SQLite) MarkMissingInactive(ctx context.Context, current dedup.KeySet) (int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, district, title FROM jobs WHERE is_active = 1")
	if err != nil {
		return 0, fmt.Errorf("list active jobs: %w", err)
	}
	var active []activeRow
	for rows.Next() {
		var a activeRow
		if err := rows.Scan(&a.id, &a.district, &a.title); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan active job: %w", err)
		}
		active = append(active, a)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	ids := missing(active, current)
	if err := s.updateIDs(ctx, "UPDATE jobs SET is_active = 0 WHERE id IN (%s)", ids); err != nil {
		return 0, fmt.Errorf("mark jobs inactive: %w", err)
	}
	return len(ids), nil
}

func (s *SQLite) MarkNotified(ctx context.Context, ids []string) error {
	if err := s.updateIDs(ctx, "UPDATE jobs SET notified = 1 WHERE id IN (%s)", ids); err != nil {
		return fmt.Errorf("mark jobs notified: %w", err)
	}
	return nil
}

func (s *SQLite) LogNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, scrape_run_id, notification_type, jobs_count, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), n.RunID, n.Channel, n.JobsCount, n.Success, nullable(n.Error))
	if err != nil {
		return fmt.Errorf("log notification: %w", err)
	}
	return nil
}

func (s *SQLite) updateIDs(ctx context.Context, format string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(format, placeholders), args...)
	return err
}
