// Package recs implements the job recommendation engine: a user-item
// interaction matrix, content-based and collaborative scoring, and a
// feature-vector path for the external skill-matching model.
//
// All structures here are in-memory snapshots rebuilt per cycle; the
// durable system of record is the interaction store (internal/store).
package recs

// ApplicationStatus is the lifecycle status of a job application.
type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusInterview   ApplicationStatus = "interview-scheduled"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusHired       ApplicationStatus = "hired"
	StatusRejected    ApplicationStatus = "rejected"
)

// StatusWeight maps an application status to an interaction weight.
// Unknown statuses fall back to 1 (same as a plain submission).
func StatusWeight(s ApplicationStatus) float64 {
	switch s {
	case StatusHired:
		return 5
	case StatusShortlisted:
		return 4
	case StatusInterview:
		return 3
	case StatusReviewed:
		return 2
	case StatusRejected:
		return 0.5
	default:
		return 1
	}
}

// JobType classifies a posting's employment form.
type JobType string

const (
	JobFullTime   JobType = "full-time"
	JobPartTime   JobType = "part-time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
	JobFreelance  JobType = "freelance"
)

// WorkMode is where the work happens. WorkModeAny is only meaningful as a
// candidate preference, never on a posting.
type WorkMode string

const (
	ModeRemote WorkMode = "remote"
	ModeOnsite WorkMode = "onsite"
	ModeHybrid WorkMode = "hybrid"
	ModeAny    WorkMode = "any"
)

// ExperienceLevel is an ordered seniority scale.
type ExperienceLevel string

// experienceLevels in ascending order; index distance feeds job similarity.
var experienceLevels = []ExperienceLevel{"entry", "junior", "mid", "senior", "lead", "executive"}

// levelIndex returns the position of lvl on the seniority scale, -1 if unknown.
func levelIndex(lvl ExperienceLevel) int {
	for i, l := range experienceLevels {
		if l == lvl {
			return i
		}
	}
	return -1
}

// InteractionType is a single user action on a job posting.
type InteractionType string

const (
	InteractView      InteractionType = "view"
	InteractSave      InteractionType = "save"
	InteractApply     InteractionType = "apply"
	InteractShortlist InteractionType = "shortlisted"
	InteractHire      InteractionType = "hired"
)

// InteractionIncrement returns the base weight delta for an interaction type.
// Unknown types contribute nothing.
func InteractionIncrement(t InteractionType) float64 {
	switch t {
	case InteractView:
		return 0.1
	case InteractSave:
		return 0.5
	case InteractApply:
		return 1.0
	case InteractShortlist:
		return 2.0
	case InteractHire:
		return 5.0
	default:
		return 0
	}
}

// MaxInteractionWeight caps any (candidate, job) interaction weight.
const MaxInteractionWeight = 5.0

// SavedJobWeight is the weight for a saved job with no application on record.
const SavedJobWeight = 0.8

// Preferences are the candidate's stated search preferences.
type Preferences struct {
	Locations []string  `json:"locations,omitempty"`
	JobTypes  []JobType `json:"job_types,omitempty"`
	WorkMode  WorkMode  `json:"work_mode,omitempty"`
}

// CandidateProfile is a read-only snapshot of a job-seeking user.
type CandidateProfile struct {
	ID          string      `json:"id"`
	Skills      []string    `json:"skills"`
	Preferences Preferences `json:"preferences"`
}

// JobPosting is a read-only snapshot of a posted job.
type JobPosting struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Skills          []string        `json:"skills"`
	Location        string          `json:"location"`
	JobType         JobType         `json:"job_type"`
	WorkMode        WorkMode        `json:"work_mode"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	IsActive        bool            `json:"is_active"`
}

// ApplicationRecord links a candidate to a job with its current status.
type ApplicationRecord struct {
	CandidateID string            `json:"candidate_id"`
	JobID       string            `json:"job_id"`
	Status      ApplicationStatus `json:"status"`
}

// SavedJobs lists the jobs a candidate has bookmarked.
type SavedJobs struct {
	CandidateID string   `json:"candidate_id"`
	JobIDs      []string `json:"job_ids"`
}

// UserItemMatrix maps candidateID → jobID → interaction weight in [0, 5].
type UserItemMatrix map[string]map[string]float64

// SimilarityMatrix is a symmetric pairwise similarity table in [0, 1].
// The diagonal is never populated.
type SimilarityMatrix map[string]map[string]float64

// Recommendation is one ranked entry returned to the caller. Ephemeral,
// never persisted.
type Recommendation struct {
	JobID              string   `json:"job_id"`
	ContentScore       float64  `json:"content_score"`
	CollaborativeScore float64  `json:"collaborative_score"`
	FinalScore         float64  `json:"final_score"`
	Reasons            []string `json:"reasons"`
}

// TrendingJob is a job ranked by recent application activity.
type TrendingJob struct {
	JobID            string  `json:"job_id"`
	Score            float64 `json:"score"`
	InteractionCount int     `json:"interaction_count"`
}

// SkillMatch is one result from the feature-vector scoring path.
type SkillMatch struct {
	JobID      string   `json:"job_id"`
	MatchScore float64  `json:"match_score"`
	Reasons    []string `json:"reasons"`
}
