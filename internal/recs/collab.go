package recs

import "sort"

// DefaultNeighborThreshold is the minimum user similarity for a neighbor to
// contribute to collaborative scores. Similarity equal to the threshold is
// included.
const DefaultNeighborThreshold = 0.1

// CollaborativeScores accumulates sim × weight over the interactions of
// every sufficiently similar user, for jobs the target has not interacted
// with. This is a weighted sum, not an average: a job endorsed by many
// similar users outranks one endorsed by a single close neighbor.
func CollaborativeScores(targetID string, matrix UserItemMatrix, similarities SimilarityMatrix, threshold float64) map[string]float64 {
	own, ok := matrix[targetID]
	if !ok {
		return nil
	}
	neighbors := similarities[targetID]
	if len(neighbors) == 0 {
		return nil
	}

	scores := make(map[string]float64)
	for otherID, sim := range neighbors {
		if sim < threshold {
			continue
		}
		for jobID, weight := range matrix[otherID] {
			if _, seen := own[jobID]; seen {
				continue
			}
			scores[jobID] += sim * weight
		}
	}
	return scores
}

// collaborativeRecommendations converts the score map to a sorted,
// truncated list.
func collaborativeRecommendations(targetID string, matrix UserItemMatrix, similarities SimilarityMatrix, threshold float64, limit int) []ScoredJob {
	scores := CollaborativeScores(targetID, matrix, similarities, threshold)
	if len(scores) == 0 {
		return nil
	}

	// Walk jobIDs in sorted order so equal scores rank deterministically.
	jobIDs := make([]string, 0, len(scores))
	for jobID := range scores {
		jobIDs = append(jobIDs, jobID)
	}
	sort.Strings(jobIDs)

	recs := make([]ScoredJob, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		recs = append(recs, ScoredJob{JobID: jobID, Score: scores[jobID]})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
