package recs

import "log/slog"

// BuildUserItemMatrix derives the interaction matrix from application
// records and saved-job lists.
//
// Every candidate in candidates gets an entry, even with no interactions.
// Application weight overwrites (one current status per application);
// saved jobs only fill pairs with no application-derived weight. Records
// referencing unknown candidates or inactive/unknown jobs are skipped with
// a warning, never aborting the build.
func BuildUserItemMatrix(candidates []CandidateProfile, jobs []JobPosting, apps []ApplicationRecord, saved []SavedJobs) UserItemMatrix {
	matrix := make(UserItemMatrix, len(candidates))
	for _, c := range candidates {
		matrix[c.ID] = make(map[string]float64)
	}

	jobIDs := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		jobIDs[j.ID] = true
	}

	for _, app := range apps {
		if app.CandidateID == "" || app.JobID == "" {
			slog.Warn("matrix: application with dangling reference skipped",
				slog.String("candidate", app.CandidateID), slog.String("job", app.JobID))
			continue
		}
		row, ok := matrix[app.CandidateID]
		if !ok {
			slog.Warn("matrix: application for unknown candidate skipped",
				slog.String("candidate", app.CandidateID))
			continue
		}
		if !jobIDs[app.JobID] {
			slog.Warn("matrix: application for inactive job skipped",
				slog.String("job", app.JobID))
			continue
		}
		row[app.JobID] = StatusWeight(app.Status)
	}

	for _, s := range saved {
		row, ok := matrix[s.CandidateID]
		if !ok {
			continue
		}
		for _, jobID := range s.JobIDs {
			if _, exists := row[jobID]; !exists {
				row[jobID] = SavedJobWeight
			}
		}
	}

	return matrix
}
