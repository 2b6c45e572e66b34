package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_recs/internal/recs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore holds the pgx connection pool for the interaction store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("interaction store connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Candidates returns every candidate profile.
func (s *PostgresStore) Candidates(ctx context.Context) ([]recs.CandidateProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, skills, pref_locations, pref_job_types, pref_work_mode FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []recs.CandidateProfile
	for rows.Next() {
		var c recs.CandidateProfile
		var jobTypes []string
		var workMode string
		if err := rows.Scan(&c.ID, &c.Skills, &c.Preferences.Locations, &jobTypes, &workMode); err != nil {
			slog.Warn("store: malformed candidate row skipped", slog.Any("error", err))
			continue
		}
		for _, jt := range jobTypes {
			c.Preferences.JobTypes = append(c.Preferences.JobTypes, recs.JobType(jt))
		}
		c.Preferences.WorkMode = recs.WorkMode(workMode)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActiveJobs returns every posting with is_active set.
func (s *PostgresStore) ActiveJobs(ctx context.Context) ([]recs.JobPosting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, description, skills, location, job_type, work_mode, experience_level, is_active
		 FROM jobs WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []recs.JobPosting
	for rows.Next() {
		var j recs.JobPosting
		var jobType, workMode, expLevel string
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Skills, &j.Location,
			&jobType, &workMode, &expLevel, &j.IsActive); err != nil {
			slog.Warn("store: malformed job row skipped", slog.Any("error", err))
			continue
		}
		j.JobType = recs.JobType(jobType)
		j.WorkMode = recs.WorkMode(workMode)
		j.ExperienceLevel = recs.ExperienceLevel(expLevel)
		out = append(out, j)
	}
	return out, rows.Err()
}

// Applications returns every application record.
func (s *PostgresStore) Applications(ctx context.Context) ([]recs.ApplicationRecord, error) {
	return s.queryApplications(ctx,
		`SELECT candidate_id, job_id, status FROM applications`)
}

// ApplicationsSince returns applications created at or after the cutoff.
func (s *PostgresStore) ApplicationsSince(ctx context.Context, since time.Time) ([]recs.ApplicationRecord, error) {
	return s.queryApplications(ctx,
		`SELECT candidate_id, job_id, status FROM applications WHERE created_at >= $1`, since)
}

func (s *PostgresStore) queryApplications(ctx context.Context, sql string, args ...any) ([]recs.ApplicationRecord, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []recs.ApplicationRecord
	for rows.Next() {
		var a recs.ApplicationRecord
		var status string
		if err := rows.Scan(&a.CandidateID, &a.JobID, &status); err != nil {
			slog.Warn("store: malformed application row skipped", slog.Any("error", err))
			continue
		}
		a.Status = recs.ApplicationStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// SavedJobs returns saved-job associations grouped per candidate.
func (s *PostgresStore) SavedJobs(ctx context.Context) ([]recs.SavedJobs, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, job_id FROM saved_jobs ORDER BY candidate_id`)
	if err != nil {
		return nil, fmt.Errorf("query saved jobs: %w", err)
	}
	defer rows.Close()

	byCandidate := make(map[string][]string)
	var order []string
	for rows.Next() {
		var candidateID, jobID string
		if err := rows.Scan(&candidateID, &jobID); err != nil {
			slog.Warn("store: malformed saved-job row skipped", slog.Any("error", err))
			continue
		}
		if _, ok := byCandidate[candidateID]; !ok {
			order = append(order, candidateID)
		}
		byCandidate[candidateID] = append(byCandidate[candidateID], jobID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]recs.SavedJobs, 0, len(order))
	for _, id := range order {
		out = append(out, recs.SavedJobs{CandidateID: id, JobIDs: byCandidate[id]})
	}
	return out, nil
}

// RecordInteraction appends one interaction to the audit log.
func (s *PostgresStore) RecordInteraction(ctx context.Context, in Interaction) error {
	if in.CandidateID == "" || in.JobID == "" {
		return errors.New("record interaction: candidate and job are required")
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (candidate_id, job_id, type, weight, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		in.CandidateID, in.JobID, string(in.Type), in.Weight, createdAt)
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// UpsertApplication inserts or updates a candidate's application status.
// Kept here for the ingest path that mirrors the external job board.
func (s *PostgresStore) UpsertApplication(ctx context.Context, a recs.ApplicationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO applications (candidate_id, job_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (candidate_id, job_id) DO UPDATE SET status = EXCLUDED.status`,
		a.CandidateID, a.JobID, string(a.Status))
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}
	return nil
}
