// Package store implements the durable interaction store behind the
// recommendation engine: candidates, job postings, applications, saved
// jobs and an append-only interaction log. Two backends are provided,
// Postgres for shared deployments and SQLite for single-node ones.
package store

import (
	"context"
	"time"

	"github.com/anatolykoptev/go_recs/internal/recs"
)

// Interaction is one row of the append-only interaction audit log.
type Interaction struct {
	CandidateID string
	JobID       string
	Type        recs.InteractionType
	Weight      float64
	CreatedAt   time.Time
}

// Store is the full store surface: the engine's read interface plus the
// interaction audit write.
type Store interface {
	recs.Store
	RecordInteraction(ctx context.Context, in Interaction) error
	Close()
}
