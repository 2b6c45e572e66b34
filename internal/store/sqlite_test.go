package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anatolykoptev/go_recs/internal/recs"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteStore_CandidateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := recs.CandidateProfile{
		ID:     "u1",
		Skills: []string{"go", "postgres"},
		Preferences: recs.Preferences{
			Locations: []string{"Berlin"},
			JobTypes:  []recs.JobType{recs.JobFullTime, recs.JobContract},
			WorkMode:  recs.ModeRemote,
		},
	}
	if err := s.UpsertCandidate(ctx, in); err != nil {
		t.Fatalf("UpsertCandidate error: %v", err)
	}

	candidates, err := s.Candidates(ctx)
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.ID != "u1" || len(got.Skills) != 2 || got.Skills[0] != "go" {
		t.Errorf("candidate = %+v, want round-tripped profile", got)
	}
	if got.Preferences.WorkMode != recs.ModeRemote || len(got.Preferences.JobTypes) != 2 {
		t.Errorf("preferences = %+v, want round-tripped preferences", got.Preferences)
	}
}

func TestSQLiteStore_UpsertCandidateUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertCandidate(ctx, recs.CandidateProfile{ID: "u1", Skills: []string{"go"}}); err != nil {
		t.Fatalf("UpsertCandidate error: %v", err)
	}
	if err := s.UpsertCandidate(ctx, recs.CandidateProfile{ID: "u1", Skills: []string{"go", "rust"}}); err != nil {
		t.Fatalf("UpsertCandidate update error: %v", err)
	}

	candidates, err := s.Candidates(ctx)
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if len(candidates) != 1 || len(candidates[0].Skills) != 2 {
		t.Errorf("expected 1 candidate with 2 skills, got %+v", candidates)
	}
}

func TestSQLiteStore_ActiveJobsFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	active := recs.JobPosting{ID: "j1", Title: "Go Developer", Skills: []string{"go"}, IsActive: true}
	inactive := recs.JobPosting{ID: "j2", Title: "Closed Role", IsActive: false}
	if err := s.UpsertJob(ctx, active); err != nil {
		t.Fatalf("UpsertJob error: %v", err)
	}
	if err := s.UpsertJob(ctx, inactive); err != nil {
		t.Fatalf("UpsertJob error: %v", err)
	}

	jobs, err := s.ActiveJobs(ctx)
	if err != nil {
		t.Fatalf("ActiveJobs error: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "j1" {
		t.Errorf("expected only j1, got %+v", jobs)
	}
}

func TestSQLiteStore_ApplicationStatusUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	app := recs.ApplicationRecord{CandidateID: "u1", JobID: "j1", Status: recs.StatusSubmitted}
	if err := s.UpsertApplication(ctx, app); err != nil {
		t.Fatalf("UpsertApplication error: %v", err)
	}
	app.Status = recs.StatusShortlisted
	if err := s.UpsertApplication(ctx, app); err != nil {
		t.Fatalf("UpsertApplication update error: %v", err)
	}

	apps, err := s.Applications(ctx)
	if err != nil {
		t.Fatalf("Applications error: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 application (one current status per pair), got %d", len(apps))
	}
	if apps[0].Status != recs.StatusShortlisted {
		t.Errorf("status = %q, want shortlisted", apps[0].Status)
	}
}

func TestSQLiteStore_ApplicationsSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertApplication(ctx, recs.ApplicationRecord{CandidateID: "u1", JobID: "j1", Status: recs.StatusSubmitted}); err != nil {
		t.Fatalf("UpsertApplication error: %v", err)
	}

	recent, err := s.ApplicationsSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ApplicationsSince error: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 recent application, got %d", len(recent))
	}

	none, err := s.ApplicationsSince(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ApplicationsSince error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no applications after future cutoff, got %d", len(none))
	}
}

func TestSQLiteStore_SavedJobsGrouping(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveJob(ctx, "u1", "j1"); err != nil {
		t.Fatalf("SaveJob error: %v", err)
	}
	if err := s.SaveJob(ctx, "u1", "j2"); err != nil {
		t.Fatalf("SaveJob error: %v", err)
	}
	if err := s.SaveJob(ctx, "u1", "j1"); err != nil { // duplicate is a no-op
		t.Fatalf("SaveJob duplicate error: %v", err)
	}
	if err := s.SaveJob(ctx, "u2", "j1"); err != nil {
		t.Fatalf("SaveJob error: %v", err)
	}

	saved, err := s.SavedJobs(ctx)
	if err != nil {
		t.Fatalf("SavedJobs error: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 candidates with saved jobs, got %d", len(saved))
	}

	byCandidate := make(map[string][]string, len(saved))
	for _, sj := range saved {
		byCandidate[sj.CandidateID] = sj.JobIDs
	}
	if len(byCandidate["u1"]) != 2 {
		t.Errorf("u1 saved jobs = %v, want 2 distinct", byCandidate["u1"])
	}
	if len(byCandidate["u2"]) != 1 {
		t.Errorf("u2 saved jobs = %v, want 1", byCandidate["u2"])
	}
}

func TestSQLiteStore_RecordInteraction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.RecordInteraction(ctx, Interaction{
		CandidateID: "u1",
		JobID:       "j1",
		Type:        recs.InteractApply,
		Weight:      1,
	})
	if err != nil {
		t.Fatalf("RecordInteraction error: %v", err)
	}

	if err := s.RecordInteraction(ctx, Interaction{JobID: "j1"}); err == nil {
		t.Error("expected error for missing candidate id")
	}
}

func TestSQLiteStore_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	candidates, err := s.Candidates(ctx)
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected empty store, got %d candidates", len(candidates))
	}

	jobs, err := s.ActiveJobs(ctx)
	if err != nil {
		t.Fatalf("ActiveJobs error: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
}
