package recs

import "sort"

// Hybrid blend weights: content-based 60%, collaborative 40%.
const (
	blendContentWeight = 0.6
	blendCollabWeight  = 0.4
)

// Reason thresholds: a source contributes its reason string only when that
// source's score is meaningful on its own.
const reasonScoreThreshold = 0.3

const (
	reasonContent = "Matches your skills and preferences"
	reasonCollab  = "Popular among similar users"
)

// BlendRecommendations merges content-based and collaborative results into
// one ranked list of at most limit entries. Jobs present in both sources
// get contentScore×0.6 + collabScore×0.4; single-source jobs keep only
// their weighted share. Sorting is stable, so ties keep insertion order
// (content results first, then collaborative-only ones).
func BlendRecommendations(content, collaborative []ScoredJob, limit int) []Recommendation {
	combined := make(map[string]*Recommendation, len(content)+len(collaborative))
	order := make([]string, 0, len(content)+len(collaborative))

	for _, rec := range content {
		combined[rec.JobID] = &Recommendation{
			JobID:        rec.JobID,
			ContentScore: rec.Score,
			FinalScore:   rec.Score * blendContentWeight,
		}
		order = append(order, rec.JobID)
	}

	for _, rec := range collaborative {
		if existing, ok := combined[rec.JobID]; ok {
			existing.CollaborativeScore = rec.Score
			existing.FinalScore = existing.ContentScore*blendContentWeight + rec.Score*blendCollabWeight
			continue
		}
		combined[rec.JobID] = &Recommendation{
			JobID:              rec.JobID,
			CollaborativeScore: rec.Score,
			FinalScore:         rec.Score * blendCollabWeight,
		}
		order = append(order, rec.JobID)
	}

	results := make([]Recommendation, 0, len(order))
	for _, jobID := range order {
		r := combined[jobID]
		r.Reasons = recommendationReasons(r)
		results = append(results, *r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].FinalScore > results[j].FinalScore })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// recommendationReasons explains which sources drove the ranking.
func recommendationReasons(r *Recommendation) []string {
	var reasons []string
	if r.ContentScore > reasonScoreThreshold {
		reasons = append(reasons, reasonContent)
	}
	if r.CollaborativeScore > reasonScoreThreshold {
		reasons = append(reasons, reasonCollab)
	}
	return reasons
}
