package pipeline

import (
	"context"
	"time"

	"contentgen/internal/domain"
)

// Instrument wraps a stage so observe receives the duration of every run,
// including failed ones. observe must be safe for concurrent use; channel
// pipelines run in parallel.
func Instrument(stage Stage, observe func(stage string, channel domain.Channel, seconds float64)) Stage {
	if observe == nil {
		return stage
	}
	return instrumentedStage{inner: stage, observe: observe}
}

type instrumentedStage struct {
	inner   Stage
	observe func(stage string, channel domain.Channel, seconds float64)
}

func (s instrumentedStage) Name() string { return s.inner.Name() }

func (s instrumentedStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	start := time.Now()
	err := s.inner.Run(ctx, req, channel, out)
	s.observe(s.inner.Name(), channel, time.Since(start).Seconds())
	return err
}
