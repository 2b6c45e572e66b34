package recs

import "sort"

// Content score component weights; they sum to 1.0 so the score needs no
// separate normalization.
const (
	contentSkillWeight    = 0.50
	contentLocationWeight = 0.20
	contentTypeWeight     = 0.15
	contentModeWeight     = 0.15
)

// ContentScore rates how well a job matches the candidate's stated skills
// and preferences, independent of other users' behavior. Result in [0, 1].
func ContentScore(candidate *CandidateProfile, job *JobPosting) float64 {
	score := SkillSimilarity(candidate.Skills, job.Skills) * contentSkillWeight

	for _, loc := range candidate.Preferences.Locations {
		if loc == job.Location {
			score += contentLocationWeight
			break
		}
	}

	for _, jt := range candidate.Preferences.JobTypes {
		if jt == job.JobType {
			score += contentTypeWeight
			break
		}
	}

	if candidate.Preferences.WorkMode == job.WorkMode || candidate.Preferences.WorkMode == ModeAny {
		score += contentModeWeight
	}

	return score
}

// ScoredJob pairs a job with a single-source score before blending.
type ScoredJob struct {
	JobID string
	Score float64
}

// contentRecommendations scores every active job the candidate has not yet
// interacted with, sorted descending, truncated to limit.
func contentRecommendations(candidate *CandidateProfile, jobs []JobPosting, interactions map[string]float64, limit int) []ScoredJob {
	recs := make([]ScoredJob, 0, len(jobs))
	for i := range jobs {
		if _, seen := interactions[jobs[i].ID]; seen {
			continue
		}
		recs = append(recs, ScoredJob{JobID: jobs[i].ID, Score: ContentScore(candidate, &jobs[i])})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
