package recs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves fixed snapshots, optionally failing after the first
// successful round to exercise the stale-snapshot path.
type fakeStore struct {
	candidates []CandidateProfile
	jobs       []JobPosting
	apps       []ApplicationRecord
	saved      []SavedJobs

	failNext bool
}

func (f *fakeStore) Candidates(ctx context.Context) ([]CandidateProfile, error) {
	if f.failNext {
		return nil, errors.New("store down")
	}
	return f.candidates, nil
}

func (f *fakeStore) ActiveJobs(ctx context.Context) ([]JobPosting, error) {
	if f.failNext {
		return nil, errors.New("store down")
	}
	return f.jobs, nil
}

func (f *fakeStore) Applications(ctx context.Context) ([]ApplicationRecord, error) {
	if f.failNext {
		return nil, errors.New("store down")
	}
	return f.apps, nil
}

func (f *fakeStore) SavedJobs(ctx context.Context) ([]SavedJobs, error) {
	if f.failNext {
		return nil, errors.New("store down")
	}
	return f.saved, nil
}

func (f *fakeStore) ApplicationsSince(ctx context.Context, since time.Time) ([]ApplicationRecord, error) {
	if f.failNext {
		return nil, errors.New("store down")
	}
	return f.apps, nil
}

func testStore() *fakeStore {
	return &fakeStore{
		candidates: []CandidateProfile{
			{ID: "u1", Skills: []string{"python", "sql"}},
			{ID: "u2", Skills: []string{"java"}},
		},
		jobs: []JobPosting{
			{ID: "jobA", Title: "Data Engineer", Skills: []string{"python", "sql", "aws"}, IsActive: true},
			{ID: "jobB", Title: "Java Developer", Skills: []string{"java"}, IsActive: true},
			{ID: "jobX", Title: "Analyst", Skills: []string{"sql"}, IsActive: true},
			{ID: "jobY", Title: "ML Engineer", Skills: []string{"python"}, IsActive: true, WorkMode: ModeRemote},
		},
		apps: []ApplicationRecord{
			{CandidateID: "u1", JobID: "jobX", Status: StatusHired},
			{CandidateID: "u2", JobID: "jobX", Status: StatusShortlisted},
			{CandidateID: "u2", JobID: "jobY", Status: StatusInterview},
		},
	}
}

func TestEngine_RebuildAndRecommend(t *testing.T) {
	st := testStore()
	e := New(st, nil, nil, Config{})
	require.False(t, e.Ready())

	require.NoError(t, e.Rebuild(context.Background()))
	require.True(t, e.Ready())

	results, err := e.Recommend(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	byID := make(map[string]Recommendation, len(results))
	for _, r := range results {
		byID[r.JobID] = r
		assert.NotEqual(t, "jobX", r.JobID, "interacted job must be excluded")
	}

	// jobA Jaccard 2/3 × 0.5 content; jobY also arrives collaboratively
	// from u2 (shared jobX, cosine 1.0, interview weight 3).
	require.Contains(t, byID, "jobA")
	require.Contains(t, byID, "jobY")
	assert.InDelta(t, 2.0/3.0*0.5, byID["jobA"].ContentScore, 1e-9)
	assert.InDelta(t, 3.0, byID["jobY"].CollaborativeScore, 1e-9)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].FinalScore, results[i].FinalScore)
	}
}

func TestEngine_RecommendBeforeBuild(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	results, err := e.Recommend(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_RecommendUnknownCandidate(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))

	results, err := e.Recommend(context.Background(), "ghost", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngine_FailedRebuildKeepsSnapshot(t *testing.T) {
	st := testStore()
	e := New(st, nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))
	builtAt := e.BuiltAt()

	st.failNext = true
	require.Error(t, e.Rebuild(context.Background()))
	assert.True(t, e.Ready(), "previous snapshot must stay authoritative")
	assert.Equal(t, builtAt, e.BuiltAt())

	results, err := e.Recommend(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, results, "stale snapshot still serves")
}

func TestEngine_UpdateInteractionCap(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))

	for i := 0; i < 3; i++ {
		e.UpdateInteraction("u1", "jobB", InteractHire, 1)
	}

	e.mu.RLock()
	weight := e.current.matrix["u1"]["jobB"]
	e.mu.RUnlock()
	assert.InDelta(t, MaxInteractionWeight, weight, 1e-9, "repeated hires stay capped")
	assert.Equal(t, int64(3), e.DirtyCount())
}

func TestEngine_UpdateInteractionScaling(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))

	e.UpdateInteraction("u1", "jobB", InteractView, 2) // 0.1 × 2
	e.UpdateInteraction("u1", "jobB", InteractSave, 1) // + 0.5

	e.mu.RLock()
	weight := e.current.matrix["u1"]["jobB"]
	e.mu.RUnlock()
	assert.InDelta(t, 0.7, weight, 1e-9)
}

func TestEngine_UpdateInteractionUnknownType(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))

	e.UpdateInteraction("u1", "jobB", InteractionType("poke"), 1)
	assert.Equal(t, int64(0), e.DirtyCount())
}

func TestEngine_Trending(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})

	trending, err := e.Trending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "jobX", trending[0].JobID) // hired 5 + shortlisted 3
	assert.InDelta(t, 8.0, trending[0].Score, 1e-9)
}

func TestEngine_SimilarJobs(t *testing.T) {
	e := New(testStore(), nil, nil, Config{})
	require.NoError(t, e.Rebuild(context.Background()))

	similar := e.SimilarJobs("jobA", 2)
	require.Len(t, similar, 2)
	assert.NotEqual(t, "jobA", similar[0].JobID)

	assert.Nil(t, e.SimilarJobs("ghost", 5))
}

func TestEngine_SkillMatches(t *testing.T) {
	t.Run("no model configured", func(t *testing.T) {
		e := New(testStore(), nil, nil, Config{})
		require.NoError(t, e.Rebuild(context.Background()))
		assert.Nil(t, e.SkillMatches(context.Background(), "u1", 5))
	})

	t.Run("model scores and ranks", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Vectors [][]float64 `json:"vectors"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			// Score by the match-ratio feature so ranking is predictable.
			scores := make([]float64, len(req.Vectors))
			for i, v := range req.Vectors {
				scores[i] = v[0]
			}
			json.NewEncoder(w).Encode(map[string]any{"scores": scores}) //nolint:errcheck
		}))
		defer srv.Close()

		e := New(testStore(), nil, NewModelClient(srv.URL, ""), Config{})
		require.NoError(t, e.Rebuild(context.Background()))

		matches := e.SkillMatches(context.Background(), "u1", 2)
		require.Len(t, matches, 2)
		assert.GreaterOrEqual(t, matches[0].MatchScore, matches[1].MatchScore)
	})

	t.Run("model failure degrades to empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "untrained", http.StatusConflict)
		}))
		defer srv.Close()

		e := New(testStore(), nil, NewModelClient(srv.URL, ""), Config{})
		require.NoError(t, e.Rebuild(context.Background()))
		assert.Nil(t, e.SkillMatches(context.Background(), "u1", 5))
	})
}

func TestMatchReasons(t *testing.T) {
	job := &JobPosting{
		Skills:          []string{"python", "sql", "aws", "spark"},
		ExperienceLevel: "entry",
		WorkMode:        ModeRemote,
	}
	reasons := matchReasons([]string{"python", "sql"}, job)
	require.Len(t, reasons, 3)
	assert.Equal(t, "2 matching skills: python, sql", reasons[0])
	assert.Equal(t, "Good for entry-level candidates", reasons[1])
	assert.Equal(t, "Remote work opportunity", reasons[2])
}
