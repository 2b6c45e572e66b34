package recs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Store supplies the engine's input snapshots. Implementations live in
// internal/store; each method is one bulk query, issued once per rebuild.
type Store interface {
	Candidates(ctx context.Context) ([]CandidateProfile, error)
	ActiveJobs(ctx context.Context) ([]JobPosting, error)
	Applications(ctx context.Context) ([]ApplicationRecord, error)
	SavedJobs(ctx context.Context) ([]SavedJobs, error)
	ApplicationsSince(ctx context.Context, since time.Time) ([]ApplicationRecord, error)
}

// Config holds engine tuning, injected from main.
type Config struct {
	NeighborThreshold float64       // minimum user similarity for collaborative scoring
	TrendingWindow    time.Duration // how far back trending looks
}

// DefaultTrendingWindow covers the last week of applications.
const DefaultTrendingWindow = 7 * 24 * time.Hour

// snapshot is one fully-built set of matrices. Immutable except for
// interaction overlay writes, which take the engine lock.
type snapshot struct {
	candidates map[string]CandidateProfile
	jobs       []JobPosting
	matrix     UserItemMatrix
	userSim    SimilarityMatrix
	itemSim    SimilarityMatrix
	builtAt    time.Time
}

// Engine owns the recommendation index: the interaction matrix and both
// similarity matrices, rebuilt as a unit and swapped atomically. A failed
// rebuild leaves the previous snapshot serving.
type Engine struct {
	store Store
	cache *ResultCache
	model *ModelClient
	cfg   Config

	mu      sync.RWMutex
	current *snapshot
	dirty   atomic.Int64
}

// New creates an Engine. cache and model may be nil: no cache means every
// request recomputes, no model disables the skill-matching path.
func New(store Store, cache *ResultCache, model *ModelClient, cfg Config) *Engine {
	if cfg.NeighborThreshold == 0 {
		cfg.NeighborThreshold = DefaultNeighborThreshold
	}
	if cfg.TrendingWindow == 0 {
		cfg.TrendingWindow = DefaultTrendingWindow
	}
	return &Engine{store: store, cache: cache, model: model, cfg: cfg}
}

// Ready reports whether a snapshot has been published.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current != nil
}

// BuiltAt returns when the current snapshot was published, zero if none.
func (e *Engine) BuiltAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return time.Time{}
	}
	return e.current.builtAt
}

// Rebuild fetches a fresh snapshot from the store and recomputes every
// matrix, then publishes the result. On any error the previous snapshot
// stays authoritative and the error is returned for the caller to log.
func (e *Engine) Rebuild(ctx context.Context) error {
	started := time.Now()

	candidates, err := e.store.Candidates(ctx)
	if err != nil {
		metrics.RebuildErrors.Add(1)
		return fmt.Errorf("rebuild: fetch candidates: %w", err)
	}
	jobs, err := e.store.ActiveJobs(ctx)
	if err != nil {
		metrics.RebuildErrors.Add(1)
		return fmt.Errorf("rebuild: fetch jobs: %w", err)
	}
	apps, err := e.store.Applications(ctx)
	if err != nil {
		metrics.RebuildErrors.Add(1)
		return fmt.Errorf("rebuild: fetch applications: %w", err)
	}
	saved, err := e.store.SavedJobs(ctx)
	if err != nil {
		metrics.RebuildErrors.Add(1)
		return fmt.Errorf("rebuild: fetch saved jobs: %w", err)
	}

	matrix := BuildUserItemMatrix(candidates, jobs, apps, saved)

	next := &snapshot{
		candidates: make(map[string]CandidateProfile, len(candidates)),
		jobs:       jobs,
		matrix:     matrix,
		userSim:    BuildUserSimilarity(matrix),
		itemSim:    BuildItemSimilarity(jobs),
		builtAt:    time.Now(),
	}
	for _, c := range candidates {
		next.candidates[c.ID] = c
	}

	e.mu.Lock()
	e.current = next
	e.mu.Unlock()
	e.dirty.Store(0)
	e.cache.Flush(ctx)

	metrics.Rebuilds.Add(1)
	slog.Info("engine: snapshot published",
		slog.Int("candidates", len(candidates)),
		slog.Int("jobs", len(jobs)),
		slog.Int("applications", len(apps)),
		slog.Duration("took", time.Since(started)))
	return nil
}

// Recommend returns up to limit blended recommendations for a candidate.
// Unknown candidates and a not-yet-built engine yield an empty list.
func (e *Engine) Recommend(ctx context.Context, candidateID string, limit int) ([]Recommendation, error) {
	metrics.RecommendRequests.Add(1)
	if limit <= 0 {
		limit = 10
	}

	key := cacheKey("rec", candidateID, strconv.Itoa(limit))
	if cached, ok := e.cache.Get(ctx, key); ok {
		return cached, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	snap := e.current
	if snap == nil {
		return nil, nil
	}

	candidate, ok := snap.candidates[candidateID]
	if !ok {
		slog.Warn("engine: recommend for unknown candidate", slog.String("candidate", candidateID))
		return nil, nil
	}

	content := contentRecommendations(&candidate, snap.jobs, snap.matrix[candidateID], limit)
	collaborative := collaborativeRecommendations(candidateID, snap.matrix, snap.userSim, e.cfg.NeighborThreshold, limit)
	results := BlendRecommendations(content, collaborative, limit)

	e.cache.Set(ctx, key, results)
	return results, nil
}

// UpdateInteraction applies a single interaction to the published snapshot
// as a capped increment and marks the engine dirty. The rebuild decision
// belongs to the Scheduler, never to this call path.
func (e *Engine) UpdateInteraction(userID, jobID string, typ InteractionType, weight float64) {
	if userID == "" || jobID == "" {
		return
	}
	if weight == 0 {
		weight = 1
	}
	delta := InteractionIncrement(typ) * weight
	if delta == 0 {
		slog.Warn("engine: unknown interaction type ignored", slog.String("type", string(typ)))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return
	}
	row := e.current.matrix[userID]
	if row == nil {
		row = make(map[string]float64)
		e.current.matrix[userID] = row
	}
	next := row[jobID] + delta
	if next > MaxInteractionWeight {
		next = MaxInteractionWeight
	}
	row[jobID] = next

	metrics.InteractionUpdates.Add(1)
	e.dirty.Add(1)
}

// DirtyCount returns the number of interaction updates applied since the
// last published snapshot.
func (e *Engine) DirtyCount() int64 { return e.dirty.Load() }

// Trending ranks jobs by application activity inside the trending window.
// Reads the store directly; trending is momentum, not snapshot state.
func (e *Engine) Trending(ctx context.Context, limit int) ([]TrendingJob, error) {
	metrics.TrendingRequests.Add(1)
	if limit <= 0 {
		limit = 10
	}

	apps, err := e.store.ApplicationsSince(ctx, time.Now().Add(-e.cfg.TrendingWindow))
	if err != nil {
		return nil, fmt.Errorf("trending: fetch applications: %w", err)
	}
	return TrendingJobs(apps, limit), nil
}

// SkillMatches scores every active job for a candidate through the external
// model. A missing or failing model degrades to an empty result set: the
// caller falls back to the blended path, it never sees an error from here.
func (e *Engine) SkillMatches(ctx context.Context, candidateID string, limit int) []SkillMatch {
	if e.model == nil {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	candidate, ok := e.current.lookupCandidate(candidateID)
	jobs := e.currentJobs()
	e.mu.RUnlock()
	if !ok || len(jobs) == 0 {
		return nil
	}

	vectors := make([][]float64, len(jobs))
	for i := range jobs {
		vectors[i] = BuildFeatureVector(candidate.Skills, jobs[i].Skills, jobs[i].Title, jobs[i].Description)
	}

	scores, err := e.model.ScoreBatch(ctx, vectors)
	if err != nil {
		slog.Warn("engine: model scoring unavailable", slog.Any("error", err))
		return nil
	}

	matches := make([]SkillMatch, len(jobs))
	for i := range jobs {
		matches[i] = SkillMatch{
			JobID:      jobs[i].ID,
			MatchScore: scores[i],
			Reasons:    matchReasons(candidate.Skills, &jobs[i]),
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchScore > matches[j].MatchScore })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// SimilarJobs returns the active jobs most similar to the given posting,
// from the item-item similarity matrix. Unknown job or no snapshot → nil.
func (e *Engine) SimilarJobs(jobID string, limit int) []ScoredJob {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil
	}
	row, ok := e.current.itemSim[jobID]
	if !ok {
		return nil
	}

	otherIDs := make([]string, 0, len(row))
	for id := range row {
		otherIDs = append(otherIDs, id)
	}
	sort.Strings(otherIDs)

	results := make([]ScoredJob, 0, len(otherIDs))
	for _, id := range otherIDs {
		results = append(results, ScoredJob{JobID: id, Score: row[id]})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (s *snapshot) lookupCandidate(id string) (CandidateProfile, bool) {
	if s == nil {
		return CandidateProfile{}, false
	}
	c, ok := s.candidates[id]
	return c, ok
}

// currentJobs copies the job slice header; callers only read elements.
// Must be called with at least a read lock held.
func (e *Engine) currentJobs() []JobPosting {
	if e.current == nil {
		return nil
	}
	return e.current.jobs
}

// matchReasons explains a skill-match result in plain language.
func matchReasons(candidateSkills []string, job *JobPosting) []string {
	var matching []string
	for _, cs := range candidateSkills {
		lc := strings.ToLower(cs)
		for _, js := range job.Skills {
			lj := strings.ToLower(js)
			if strings.Contains(lc, lj) || strings.Contains(lj, lc) {
				matching = append(matching, cs)
				break
			}
		}
	}

	var reasons []string
	if len(matching) > 0 {
		shown := matching
		if len(shown) > 3 {
			shown = shown[:3]
		}
		reasons = append(reasons, fmt.Sprintf("%d matching skills: %s", len(matching), strings.Join(shown, ", ")))
	}
	if job.ExperienceLevel == "entry" && len(candidateSkills) < 5 {
		reasons = append(reasons, "Good for entry-level candidates")
	}
	if job.WorkMode == ModeRemote {
		reasons = append(reasons, "Remote work opportunity")
	}
	return reasons
}
