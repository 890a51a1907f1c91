package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"contentgen/internal/domain"
)

func testRequest() domain.CampaignRequest {
	return domain.CampaignRequest{
		Title:    "Summer Sale",
		Brief:    "50% off all items",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelInstagram},
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	jobID, err := s.Create(ctx, testRequest())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if jobID == "" {
		t.Fatal("Create returned empty job id")
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if job.Status != domain.JobStatusQueued {
		t.Fatalf("Status = %q, want %q", job.Status, domain.JobStatusQueued)
	}
	if job.Progress != 0 {
		t.Fatalf("Progress = %d, want 0", job.Progress)
	}
	if job.Request.Title != "Summer Sale" {
		t.Fatalf("Request.Title = %q", job.Request.Title)
	}
}

func TestGetUnknownID(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "missing", func(j *domain.Job) {})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update error = %v, want ErrNotFound", err)
	}
}

func TestUpdateGuardsTerminalStatusAndProgress(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	jobID, _ := s.Create(ctx, testRequest())

	if err := s.Update(ctx, jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusCompleted
		j.Progress = 100
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	// Neither a status regression nor a progress decrease may stick.
	if err := s.Update(ctx, jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusRunning
		j.Progress = 10
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("Status = %q, want %q", job.Status, domain.JobStatusCompleted)
	}
	if job.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", job.Progress)
	}
}

func TestUpdateIsAtomicUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	jobID, _ := s.Create(ctx, testRequest())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(ch domain.Channel) {
			defer wg.Done()
			_ = s.Update(ctx, jobID, func(j *domain.Job) {
				j.Outcomes = append(j.Outcomes, domain.ChannelOutcome{Channel: ch})
			})
		}(domain.ChannelEmail)
	}
	wg.Wait()

	job, err := s.Get(ctx, jobID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(job.Outcomes) != writers {
		t.Fatalf("len(Outcomes) = %d, want %d (lost updates)", len(job.Outcomes), writers)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	jobID, _ := s.Create(ctx, testRequest())

	job, _ := s.Get(ctx, jobID)
	job.Status = domain.JobStatusFailed
	job.StageDone[domain.ChannelEmail] = 0.5

	stored, _ := s.Get(ctx, jobID)
	if stored.Status != domain.JobStatusQueued {
		t.Fatalf("stored Status = %q, mutation leaked through Get", stored.Status)
	}
	if len(stored.StageDone) != 0 {
		t.Fatal("stored StageDone mutated through Get copy")
	}
}
