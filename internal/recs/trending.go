package recs

import "sort"

// Trending weights differ from the matrix weight table: trending measures
// recent momentum, not affinity, so rejected still counts as activity.
func trendingWeight(s ApplicationStatus) float64 {
	switch s {
	case StatusHired:
		return 5
	case StatusShortlisted:
		return 3
	case StatusInterview:
		return 2
	default:
		return 1
	}
}

// TrendingJobs ranks jobs by recent application activity. apps should be
// the applications from the trending window (the store filters by time);
// every application adds its status weight to the job's score and bumps
// its interaction count.
func TrendingJobs(apps []ApplicationRecord, limit int) []TrendingJob {
	type entry struct {
		score float64
		count int
	}
	byJob := make(map[string]*entry)
	order := make([]string, 0, len(apps))

	for _, app := range apps {
		if app.JobID == "" {
			continue
		}
		e, ok := byJob[app.JobID]
		if !ok {
			e = &entry{}
			byJob[app.JobID] = e
			order = append(order, app.JobID)
		}
		e.count++
		e.score += trendingWeight(app.Status)
	}

	results := make([]TrendingJob, 0, len(order))
	for _, jobID := range order {
		e := byJob[jobID]
		results = append(results, TrendingJob{JobID: jobID, Score: e.score, InteractionCount: e.count})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
