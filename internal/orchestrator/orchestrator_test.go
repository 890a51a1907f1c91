package orchestrator

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"contentgen/internal/domain"
	"contentgen/internal/pipeline"
	"contentgen/internal/store"
)

type stageFunc struct {
	name string
	run  func(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *pipeline.StageOutputs) error
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *pipeline.StageOutputs) error {
	if s.run != nil {
		return s.run(ctx, req, channel, out)
	}
	return nil
}

// happyStages emits deterministic content for every channel.
func happyStages() []pipeline.Stage {
	return []pipeline.Stage{
		stageFunc{name: pipeline.StageRetrieval, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			out.BrandContext = "brand context"
			return nil
		}},
		stageFunc{name: pipeline.StagePrompt, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			out.Prompt = "prompt for " + string(ch)
			return nil
		}},
		stageFunc{name: pipeline.StageCopy, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			out.Copy = "copy for " + string(ch)
			out.Variations = []string{"v1", "v2"}
			return nil
		}},
		stageFunc{name: pipeline.StageImage, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			out.Images = []string{"https://img.example/" + string(ch)}
			return nil
		}},
		stageFunc{name: pipeline.StageScore, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			out.Score = 0.7
			if ch == domain.ChannelInstagram {
				out.Score = 0.9
			}
			return nil
		}},
	}
}

func newTestOrchestrator(stages []pipeline.Stage) (*Orchestrator, *store.MemoryStore) {
	s := store.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	return New(s, pipeline.NewRunner(stages...), logger, nil), s
}

func TestSubmitCompletesAllChannels(t *testing.T) {
	orc, _ := newTestOrchestrator(happyStages())
	ctx := context.Background()

	jobID, err := orc.Submit(ctx, domain.CampaignRequest{
		Title:    "Summer Sale",
		Brief:    "50% off all items",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelInstagram},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	orc.Wait()

	snap, err := orc.Snapshot(ctx, jobID)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.Status != domain.JobStatusCompleted {
		t.Fatalf("Status = %q, want completed", snap.Status)
	}
	if snap.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", snap.Progress)
	}
	if snap.Result == nil {
		t.Fatal("Result missing on completed job")
	}
	if len(snap.Result.Channels) != 2 {
		t.Fatalf("len(Channels) = %d, want 2", len(snap.Result.Channels))
	}
	if snap.Result.Channels[0].Channel != domain.ChannelEmail || snap.Result.Channels[1].Channel != domain.ChannelInstagram {
		t.Fatalf("channel order = %v, want request order", snap.Result.Channels)
	}
	if len(snap.Result.Images) != 2 {
		t.Fatalf("len(Images) = %d, want 2", len(snap.Result.Images))
	}
}

func TestSubmitComputesInsightsAfterAllChannels(t *testing.T) {
	orc, _ := newTestOrchestrator(happyStages())
	ctx := context.Background()

	jobID, err := orc.Submit(ctx, domain.CampaignRequest{
		Title:    "Launch",
		Brief:    "New product",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelInstagram},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	orc.Wait()

	snap, _ := orc.Snapshot(ctx, jobID)
	insights := snap.Result.Insights
	if insights == nil {
		t.Fatal("Insights missing")
	}
	if insights.BestChannel != domain.ChannelInstagram {
		t.Fatalf("BestChannel = %q, want instagram", insights.BestChannel)
	}
	if insights.OverallScore != 0.8 {
		t.Fatalf("OverallScore = %v, want 0.8", insights.OverallScore)
	}
	if insights.TotalVariations != 4 {
		t.Fatalf("TotalVariations = %d, want 4", insights.TotalVariations)
	}
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	orc, _ := newTestOrchestrator(happyStages())
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CampaignRequest
	}{
		{"empty title", domain.CampaignRequest{Brief: "b", Channels: []domain.Channel{domain.ChannelEmail}}},
		{"empty brief", domain.CampaignRequest{Title: "t", Channels: []domain.Channel{domain.ChannelEmail}}},
		{"no channels", domain.CampaignRequest{Title: "t", Brief: "b"}},
		{"unknown channel", domain.CampaignRequest{Title: "t", Brief: "b", Channels: []domain.Channel{"myspace"}}},
		{"duplicate channel", domain.CampaignRequest{Title: "t", Brief: "b", Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelEmail}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jobID, err := orc.Submit(ctx, tc.req)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("Submit error = %v, want ErrInvalidRequest", err)
			}
			if jobID != "" {
				t.Fatalf("Submit returned job id %q for invalid request", jobID)
			}
		})
	}
}

func TestSnapshotUnknownJobID(t *testing.T) {
	orc, _ := newTestOrchestrator(happyStages())
	if _, err := orc.Snapshot(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Snapshot error = %v, want ErrNotFound", err)
	}
}

func TestChannelFailureDoesNotFailJob(t *testing.T) {
	stages := happyStages()
	// Image generation fails for facebook only.
	stages[3] = stageFunc{name: pipeline.StageImage, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
		if ch == domain.ChannelFacebook {
			return errors.New("provider unavailable")
		}
		return nil
	}}
	orc, _ := newTestOrchestrator(stages)
	ctx := context.Background()

	jobID, err := orc.Submit(ctx, domain.CampaignRequest{
		Title:    "Sale",
		Brief:    "Everything must go",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelFacebook},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	orc.Wait()

	snap, _ := orc.Snapshot(ctx, jobID)
	if snap.Status != domain.JobStatusCompleted {
		t.Fatalf("Status = %q, want completed despite one failed channel", snap.Status)
	}
	if snap.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", snap.Progress)
	}
	if len(snap.Result.Channels) != 1 || snap.Result.Channels[0].Channel != domain.ChannelEmail {
		t.Fatalf("Channels = %v, want only email", snap.Result.Channels)
	}
	insights := snap.Result.Insights
	if len(insights.FailedChannels) != 1 || insights.FailedChannels[0] != domain.ChannelFacebook {
		t.Fatalf("FailedChannels = %v, want [facebook]", insights.FailedChannels)
	}
	// The failed channel must not drag the average down as a zero.
	if insights.OverallScore != 0.7 {
		t.Fatalf("OverallScore = %v, want 0.7", insights.OverallScore)
	}
}

func TestAllChannelsFailedFailsJob(t *testing.T) {
	stages := happyStages()
	stages[2] = stageFunc{name: pipeline.StageCopy, run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
		return errors.New("model down")
	}}
	orc, _ := newTestOrchestrator(stages)
	ctx := context.Background()

	jobID, err := orc.Submit(ctx, domain.CampaignRequest{
		Title:    "Sale",
		Brief:    "Everything must go",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelTwitter},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	orc.Wait()

	snap, _ := orc.Snapshot(ctx, jobID)
	if snap.Status != domain.JobStatusFailed {
		t.Fatalf("Status = %q, want failed", snap.Status)
	}
	if snap.Progress != 100 {
		t.Fatalf("Progress = %d, want 100", snap.Progress)
	}
	if snap.Result != nil {
		t.Fatal("failed job must not carry a result")
	}
	if snap.Error == "" {
		t.Fatal("failed job must surface an error message")
	}
}

func TestProgressIsMonotonicAcrossPolls(t *testing.T) {
	stages := happyStages()
	for i, stage := range stages {
		inner := stage
		stages[i] = stageFunc{name: inner.Name(), run: func(ctx context.Context, req *domain.CampaignRequest, ch domain.Channel, out *pipeline.StageOutputs) error {
			time.Sleep(2 * time.Millisecond)
			return inner.Run(ctx, req, ch, out)
		}}
	}
	orc, _ := newTestOrchestrator(stages)
	ctx := context.Background()

	jobID, err := orc.Submit(ctx, domain.CampaignRequest{
		Title:    "Sale",
		Brief:    "Everything must go",
		Channels: []domain.Channel{domain.ChannelEmail, domain.ChannelInstagram, domain.ChannelTwitter},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	statusRank := map[domain.JobStatus]int{
		domain.JobStatusQueued:    0,
		domain.JobStatusRunning:   1,
		domain.JobStatusCompleted: 2,
		domain.JobStatusFailed:    2,
	}
	prevProgress := -1
	prevRank := -1
	for i := 0; i < 200; i++ {
		snap, err := orc.Snapshot(ctx, jobID)
		if err != nil {
			t.Fatalf("Snapshot error: %v", err)
		}
		if snap.Progress < prevProgress {
			t.Fatalf("progress regressed from %d to %d", prevProgress, snap.Progress)
		}
		if statusRank[snap.Status] < prevRank {
			t.Fatalf("status regressed to %q", snap.Status)
		}
		if snap.Status != domain.JobStatusCompleted && snap.Status != domain.JobStatusFailed && snap.Progress == 100 {
			t.Fatal("progress hit 100 before a terminal status")
		}
		prevProgress = snap.Progress
		prevRank = statusRank[snap.Status]
		if snap.Status.Terminal() {
			break
		}
		time.Sleep(time.Millisecond)
	}
	orc.Wait()

	snap, _ := orc.Snapshot(ctx, jobID)
	if !snap.Status.Terminal() || snap.Progress != 100 {
		t.Fatalf("final snapshot = %q/%d, want terminal/100", snap.Status, snap.Progress)
	}
}
