package pipeline

import (
	"context"

	"contentgen/internal/domain"
)

// Runner executes the fixed stage sequence for one channel, threading each
// stage's output into the next.
type Runner struct {
	stages []Stage
}

// NewRunner composes a pipeline from an ordered stage list.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{stages: stages}
}

// StageCount returns the number of stages a full run executes.
func (r *Runner) StageCount() int {
	return len(r.stages)
}

// Run executes every stage in order for the given channel. onProgress, when
// non-nil, fires after each completed stage with the done/total counts. A
// stage failure aborts this channel's run only and is returned as a
// *StageError.
func (r *Runner) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, onProgress func(done, total int)) (*domain.ChannelResult, error) {
	out := &StageOutputs{}
	total := len(r.stages)
	for i, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: stage.Name(), Channel: channel, Err: err}
		}
		if err := stage.Run(ctx, req, channel, out); err != nil {
			return nil, &StageError{Stage: stage.Name(), Channel: channel, Err: err}
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return &domain.ChannelResult{
		Channel:    channel,
		Copy:       out.Copy,
		Variations: out.Variations,
		Images:     out.Images,
		Score:      out.Score,
		Notes:      out.Notes,
	}, nil
}
