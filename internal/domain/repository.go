package domain

import "context"

// JobStore defines persistence for job records. It is the only shared mutable
// resource in the orchestration core; every cross-pipeline write goes through
// Update so no two concurrent mutations of the same job can interleave.
type JobStore interface {
	// Create allocates a new queued job for the request and returns its id.
	Create(ctx context.Context, req CampaignRequest) (string, error)
	// Get returns the job for the id, or ErrNotFound.
	Get(ctx context.Context, jobID string) (*Job, error)
	// Update applies an atomic read-modify-write transition. The mutator
	// observes the latest committed state. Unknown ids yield ErrNotFound.
	Update(ctx context.Context, jobID string, mutate func(*Job)) error
}
