package recs

import (
	"math"
	"strings"
)

// Job similarity component weights. They sum to 1.0; the divisor in
// JobSimilarity guards against a future conditional component.
const (
	jobSimSkillWeight    = 0.40
	jobSimLocationWeight = 0.20
	jobSimTypeWeight     = 0.15
	jobSimExpWeight      = 0.15
	jobSimModeWeight     = 0.10
)

// SkillSimilarity computes the case-insensitive Jaccard index of two skill
// lists. Either list empty → 0, never NaN.
func SkillSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[strings.ToLower(s)] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[strings.ToLower(s)] = true
	}

	inter := 0
	for s := range setA {
		if setB[s] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// JobSimilarity scores two postings in [0, 1] from skills, location, job
// type, experience-level closeness and work mode.
func JobSimilarity(a, b *JobPosting) float64 {
	similarity := 0.0
	factors := 0.0

	similarity += SkillSimilarity(a.Skills, b.Skills) * jobSimSkillWeight
	factors += jobSimSkillWeight

	if a.Location == b.Location {
		similarity += jobSimLocationWeight
	}
	factors += jobSimLocationWeight

	if a.JobType == b.JobType {
		similarity += jobSimTypeWeight
	}
	factors += jobSimTypeWeight

	similarity += experienceCloseness(a.ExperienceLevel, b.ExperienceLevel) * jobSimExpWeight
	factors += jobSimExpWeight

	if a.WorkMode == b.WorkMode {
		similarity += jobSimModeWeight
	}
	factors += jobSimModeWeight

	if factors == 0 {
		return 0
	}
	return similarity / factors
}

// experienceCloseness maps the index distance on the seniority scale to
// [0, 1]. Unknown levels sit at the scale's far ends, matching how the
// reference data treated them (missing level → index -1).
func experienceCloseness(a, b ExperienceLevel) float64 {
	ia, ib := levelIndex(a), levelIndex(b)
	return 1 - math.Abs(float64(ia-ib))/float64(len(experienceLevels))
}

// UserCosineSimilarity computes cosine similarity of two interaction maps
// restricted to their shared jobs. Empty intersection or a zero-magnitude
// vector → 0.
func UserCosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, magA, magB float64
	common := 0
	for jobID, wa := range a {
		wb, ok := b[jobID]
		if !ok {
			continue
		}
		common++
		dot += wa * wb
		magA += wa * wa
		magB += wb * wb
	}

	if common == 0 || magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// BuildItemSimilarity computes the symmetric job-to-job similarity matrix
// over active jobs.
func BuildItemSimilarity(jobs []JobPosting) SimilarityMatrix {
	m := make(SimilarityMatrix, len(jobs))
	for i := range jobs {
		if m[jobs[i].ID] == nil {
			m[jobs[i].ID] = make(map[string]float64)
		}
		for j := i + 1; j < len(jobs); j++ {
			sim := JobSimilarity(&jobs[i], &jobs[j])
			if m[jobs[j].ID] == nil {
				m[jobs[j].ID] = make(map[string]float64)
			}
			m[jobs[i].ID][jobs[j].ID] = sim
			m[jobs[j].ID][jobs[i].ID] = sim
		}
	}
	return m
}

// BuildUserSimilarity computes the symmetric user-to-user cosine similarity
// matrix over every candidate present in the interaction matrix.
func BuildUserSimilarity(matrix UserItemMatrix) SimilarityMatrix {
	userIDs := make([]string, 0, len(matrix))
	for id := range matrix {
		userIDs = append(userIDs, id)
	}

	m := make(SimilarityMatrix, len(userIDs))
	for i := range userIDs {
		if m[userIDs[i]] == nil {
			m[userIDs[i]] = make(map[string]float64)
		}
		for j := i + 1; j < len(userIDs); j++ {
			sim := UserCosineSimilarity(matrix[userIDs[i]], matrix[userIDs[j]])
			if m[userIDs[j]] == nil {
				m[userIDs[j]] = make(map[string]float64)
			}
			m[userIDs[i]][userIDs[j]] = sim
			m[userIDs[j]][userIDs[i]] = sim
		}
	}
	return m
}
