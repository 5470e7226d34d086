package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school-job-scout/internal/dedup"
	"school-job-scout/internal/scraper"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id               UUID PRIMARY KEY,
	status           TEXT NOT NULL,
	source           TEXT NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at     TIMESTAMPTZ,
	total_jobs_found INT,
	new_jobs_found   INT,
	error_message    TEXT
);
CREATE TABLE IF NOT EXISTS jobs (
	id            UUID PRIMARY KEY,
	district      TEXT NOT NULL,
	title         TEXT NOT NULL,
	url           TEXT NOT NULL,
	portal_type   TEXT,
	position_type TEXT,
	location      TEXT,
	category      TEXT,
	search_term   TEXT,
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	notified      BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (district, title)
);
CREATE TABLE IF NOT EXISTS notifications (
	id                UUID PRIMARY KEY,
	scrape_run_id     UUID REFERENCES scrape_runs(id),
	notification_type TEXT NOT NULL,
	jobs_count        INT NOT NULL,
	success           BOOLEAN NOT NULL,
	error_message     TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Postgres struct {
	db *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Supabase's pooler runs PgBouncer in transaction mode, which breaks cached prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &Postgres{db: pool}, nil
}

func (r *Postgres) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

func (r *Postgres) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ---------------- RUN OPERATIONS ----------------

func (r *Postgres) CreateRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, "INSERT INTO scrape_runs (id, status, source) VALUES ($1, $2, $3)", id, RunRunning, source)
	if err != nil {
		return "", fmt.Errorf("failed to create scrape run: %w", err)
	}
	return id, nil
}

func (r *Postgres) FinishRun(ctx context.Context, runID string, res RunResult) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_runs
		SET status = $1, completed_at = now(), total_jobs_found = $2, new_jobs_found = $3, error_message = $4
		WHERE id = $5`,
		res.Status, res.TotalJobs, res.NewJobs, nullable(res.Error), runID)
	if err != nil {
		return fmt.Errorf("failed to finish scrape run: %w", err)
	}
	return nil
}

// ---------------- JOB OPERATIONS ----------------

// UpsertJobs inserts new jobs or refreshes existing ones (based on district + title).
func (r *Postgres) UpsertJobs(ctx context.Context, jobs []scraper.Job) ([]StoredJob, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO jobs (id, district, title, url, portal_type, position_type, location, category, search_term, last_seen_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), TRUE)
		ON CONFLICT (district, title)
		DO UPDATE SET url = EXCLUDED.url, portal_type = EXCLUDED.portal_type, position_type = EXCLUDED.position_type,
			location = EXCLUDED.location, category = EXCLUDED.category, search_term = EXCLUDED.search_term,
			last_seen_at = now(), is_active = TRUE
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
		err := tx.QueryRow(ctx, query, uuid.NewString(), job.District, job.Title, job.URL, string(job.Source),
			nullable(job.PositionType), nullable(job.Location), nullable(job.Category), nullable(job.SearchTerm)).
			Scan(&id, &notified)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert job %q: %w", dedup.Key(job), err)
		}
		if !notified && !seen[id] {
			seen[id] = true
			pending = append(pending, StoredJob{ID: id, Job: job})
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert: %w", err)
	}
	return pending, nil
}

func (r *Postgres) MarkMissingInactive(ctx context.Context, current dedup.KeySet) (int, error) {
	rows, err := r.db.Query(ctx, "SELECT id, district, title FROM jobs WHERE is_active")
	if err != nil {
		return 0, fmt.Errorf("failed to list active jobs: %w", err)
	}
	var active []activeRow
	for rows.Next() {
		var a activeRow
		if err := rows.Scan(&a.id, &a.district, &a.title); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan active job: %w", err)
		}
		active = append(active, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	ids := missing(active, current)
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := r.db.Exec(ctx, "UPDATE jobs SET is_active = FALSE WHERE id = ANY($1)", ids); err != nil {
		return 0, fmt.Errorf("failed to mark jobs inactive: %w", err)
	}
	return len(ids), nil
}

func (r *Postgres) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, "UPDATE jobs SET notified = TRUE WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to mark jobs notified: %w", err)
	}
	return nil
}

// ---------------- NOTIFICATION OPERATIONS ----------------

func (r *Postgres) LogNotification(ctx context.Context, n Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, scrape_run_id, notification_type, jobs_count, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), n.RunID, n.Channel, n.JobsCount, n.Success, nullable(n.Error))
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
