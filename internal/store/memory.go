package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentgen/internal/domain"
)

// MemoryStore is the default in-process job store. A single mutex serializes
// Update calls so each mutator observes the latest committed state; mutators
// must stay short, long-running work happens outside and publishes progress
// through additional Update calls.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*domain.Job)}
}

// Create allocates a new queued job and returns its identifier.
func (s *MemoryStore) Create(ctx context.Context, req domain.CampaignRequest) (string, error) {
	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Status:    domain.JobStatusQueued,
		Progress:  0,
		Request:   req,
		StageDone: make(map[domain.Channel]float64, len(req.Channels)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job.ID, nil
}

// Get returns a copy of the stored job so callers never alias the record
// mutated by concurrent Update calls.
func (s *MemoryStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyJob(job), nil
}

// Update applies the mutator under the store lock. Transitions that would
// lower progress or leave a terminal status are discarded.
func (s *MemoryStore) Update(ctx context.Context, jobID string, mutate func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	prevStatus := job.Status
	prevProgress := job.Progress
	mutate(job)
	if prevStatus.Terminal() && job.Status != prevStatus {
		job.Status = prevStatus
	}
	if job.Progress < prevProgress {
		job.Progress = prevProgress
	}
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func copyJob(job *domain.Job) *domain.Job {
	cp := *job
	if job.StageDone != nil {
		cp.StageDone = make(map[domain.Channel]float64, len(job.StageDone))
		for ch, done := range job.StageDone {
			cp.StageDone[ch] = done
		}
	}
	if job.Outcomes != nil {
		cp.Outcomes = append([]domain.ChannelOutcome(nil), job.Outcomes...)
	}
	if job.Result != nil {
		res := *job.Result
		res.Channels = append([]domain.ChannelResult(nil), job.Result.Channels...)
		res.Images = append([]string(nil), job.Result.Images...)
		if job.Result.Insights != nil {
			ins := *job.Result.Insights
			res.Insights = &ins
		}
		cp.Result = &res
	}
	return &cp
}

var _ domain.JobStore = (*MemoryStore)(nil)
