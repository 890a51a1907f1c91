package pipeline

import (
	"context"
	"fmt"

	"contentgen/internal/domain"
)

// StageOutputs accumulates what each stage of a channel pipeline produced.
// The struct is owned by a single pipeline run; a slot is written once, by the
// stage that owns it, and read-only afterwards.
type StageOutputs struct {
	BrandContext string
	Prompt       string
	Copy         string
	Variations   []string
	Images       []string
	Score        float64
	Notes        []string
}

// Stage is one step of a channel's content-generation sequence. A stage reads
// the request and prior outputs, writes its own slot in out, and must not
// touch state shared with sibling channel pipelines.
type Stage interface {
	Name() string
	Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error
}

// StageError marks a failure of a single stage within a single channel
// pipeline. It is contained at the pipeline boundary and never aborts sibling
// channels.
type StageError struct {
	Stage   string
	Channel domain.Channel
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for channel %s: %v", e.Stage, e.Channel, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
