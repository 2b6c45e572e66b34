package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_recs/internal/recs"
)

// SQLiteStore is the single-node interaction store. Skill and preference
// lists are stored as JSON text columns; SQLite has no array type.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the SQLite store at path. The parent
// directory is created if missing.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("sqlite: mkdir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	slog.Info("interaction store opened", slog.String("path", path))
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() {
	s.db.Close() //nolint:errcheck
}

func (s *SQLiteStore) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candidates (
			id             TEXT PRIMARY KEY,
			skills         TEXT NOT NULL DEFAULT '[]',
			pref_locations TEXT NOT NULL DEFAULT '[]',
			pref_job_types TEXT NOT NULL DEFAULT '[]',
			pref_work_mode TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			skills           TEXT NOT NULL DEFAULT '[]',
			location         TEXT NOT NULL DEFAULT '',
			job_type         TEXT NOT NULL DEFAULT '',
			work_mode        TEXT NOT NULL DEFAULT '',
			experience_level TEXT NOT NULL DEFAULT '',
			is_active        INTEGER NOT NULL DEFAULT 1,
			created_at       TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_id TEXT NOT NULL,
			job_id       TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'submitted',
			created_at   TEXT NOT NULL,
			UNIQUE (candidate_id, job_id)
		)`,
		`CREATE TABLE IF NOT EXISTS saved_jobs (
			candidate_id TEXT NOT NULL,
			job_id       TEXT NOT NULL,
			created_at   TEXT NOT NULL,
			PRIMARY KEY (candidate_id, job_id)
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			candidate_id TEXT NOT NULL,
			job_id       TEXT NOT NULL,
			type         TEXT NOT NULL,
			weight       REAL NOT NULL DEFAULT 1,
			created_at   TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// decodeList parses a JSON string-array column, tolerating bad data.
func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("store: malformed list column", slog.Any("error", err))
		return nil
	}
	return out
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return string(data)
}

// Candidates returns every candidate profile.
func (s *SQLiteStore) Candidates(ctx context.Context) ([]recs.CandidateProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, skills, pref_locations, pref_job_types, pref_work_mode FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []recs.CandidateProfile
	for rows.Next() {
		var c recs.CandidateProfile
		var skills, locations, jobTypes, workMode string
		if err := rows.Scan(&c.ID, &skills, &locations, &jobTypes, &workMode); err != nil {
			slog.Warn("store: malformed candidate row skipped", slog.Any("error", err))
			continue
		}
		c.Skills = decodeList(skills)
		c.Preferences.Locations = decodeList(locations)
		for _, jt := range decodeList(jobTypes) {
			c.Preferences.JobTypes = append(c.Preferences.JobTypes, recs.JobType(jt))
		}
		c.Preferences.WorkMode = recs.WorkMode(workMode)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActiveJobs returns every posting with is_active set.
func (s *SQLiteStore) ActiveJobs(ctx context.Context) ([]recs.JobPosting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, skills, location, job_type, work_mode, experience_level, is_active
		 FROM jobs WHERE is_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []recs.JobPosting
	for rows.Next() {
		var j recs.JobPosting
		var skills, jobType, workMode, expLevel string
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &skills, &j.Location,
			&jobType, &workMode, &expLevel, &j.IsActive); err != nil {
			slog.Warn("store: malformed job row skipped", slog.Any("error", err))
			continue
		}
		j.Skills = decodeList(skills)
		j.JobType = recs.JobType(jobType)
		j.WorkMode = recs.WorkMode(workMode)
		j.ExperienceLevel = recs.ExperienceLevel(expLevel)
		out = append(out, j)
	}
	return out, rows.Err()
}

// Applications returns every application record.
func (s *SQLiteStore) Applications(ctx context.Context) ([]recs.ApplicationRecord, error) {
	return s.queryApplications(ctx,
		`SELECT candidate_id, job_id, status FROM applications`)
}

// ApplicationsSince returns applications created at or after the cutoff.
func (s *SQLiteStore) ApplicationsSince(ctx context.Context, since time.Time) ([]recs.ApplicationRecord, error) {
	return s.queryApplications(ctx,
		`SELECT candidate_id, job_id, status FROM applications WHERE created_at >= ?`,
		since.UTC().Format(time.RFC3339))
}

func (s *SQLiteStore) queryApplications(ctx context.Context, query string, args ...any) ([]recs.ApplicationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) SavedJobs(ctx context.Context) ([]recs.SavedJobs, error) {
	rows, err := s.db.QueryContext(ctx,
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
func (s *SQLiteStore) RecordInteraction(ctx context.Context, in Interaction) error {
	if in.CandidateID == "" || in.JobID == "" {
		return errors.New("record interaction: candidate and job are required")
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (candidate_id, job_id, type, weight, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		in.CandidateID, in.JobID, string(in.Type), in.Weight, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

// UpsertCandidate inserts or replaces a candidate profile. Used by the
// ingest path mirroring the external user store, and by tests.
func (s *SQLiteStore) UpsertCandidate(ctx context.Context, c recs.CandidateProfile) error {
	if c.ID == "" {
		return errors.New("upsert candidate: id is required")
	}
	jobTypes := make([]string, 0, len(c.Preferences.JobTypes))
	for _, jt := range c.Preferences.JobTypes {
		jobTypes = append(jobTypes, string(jt))
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO candidates (id, skills, pref_locations, pref_job_types, pref_work_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   skills = excluded.skills,
		   pref_locations = excluded.pref_locations,
		   pref_job_types = excluded.pref_job_types,
		   pref_work_mode = excluded.pref_work_mode`,
		c.ID, encodeList(c.Skills), encodeList(c.Preferences.Locations),
		encodeList(jobTypes), string(c.Preferences.WorkMode), now)
	if err != nil {
		return fmt.Errorf("upsert candidate: %w", err)
	}
	return nil
}

// UpsertJob inserts or replaces a job posting.
func (s *SQLiteStore) UpsertJob(ctx context.Context, j recs.JobPosting) error {
	if j.ID == "" {
		return errors.New("upsert job: id is required")
	}
	active := 0
	if j.IsActive {
		active = 1
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, description, skills, location, job_type, work_mode, experience_level, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   skills = excluded.skills,
		   location = excluded.location,
		   job_type = excluded.job_type,
		   work_mode = excluded.work_mode,
		   experience_level = excluded.experience_level,
		   is_active = excluded.is_active`,
		j.ID, j.Title, j.Description, encodeList(j.Skills), j.Location,
		string(j.JobType), string(j.WorkMode), string(j.ExperienceLevel), active, now)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

// UpsertApplication inserts or updates a candidate's application status.
func (s *SQLiteStore) UpsertApplication(ctx context.Context, a recs.ApplicationRecord) error {
	if a.CandidateID == "" || a.JobID == "" {
		return errors.New("upsert application: candidate and job are required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (candidate_id, job_id, status, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(candidate_id, job_id) DO UPDATE SET status = excluded.status`,
		a.CandidateID, a.JobID, string(a.Status), now)
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}
	return nil
}

// SaveJob bookmarks a job for a candidate. Saving twice is a no-op.
func (s *SQLiteStore) SaveJob(ctx context.Context, candidateID, jobID string) error {
	if candidateID == "" || jobID == "" {
		return errors.New("save job: candidate and job are required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_jobs (candidate_id, job_id, created_at) VALUES (?, ?, ?)`,
		candidateID, jobID, now)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}
