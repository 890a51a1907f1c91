package pipeline

import (
	"context"

	"contentgen/internal/domain"
)

// Stage names in fixed execution order.
const (
	StageRetrieval = "retrieval"
	StagePrompt    = "prompt"
	StageCopy      = "copy"
	StageImage     = "image"
	StageScore     = "score"
)

// ContextProvider retrieves brand knowledge for a campaign. An empty context
// is a legitimate outcome, not an error.
type ContextProvider interface {
	Retrieve(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel) (string, error)
}

// PromptBuilder turns the request plus retrieved context into the generation
// prompt for one channel.
type PromptBuilder interface {
	Build(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, brandContext string) (string, error)
}

// Draft is the copywriter's output for one channel.
type Draft struct {
	Copy       string
	Variations []string
}

// Copywriter generates the primary copy and optional variations.
type Copywriter interface {
	Write(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt string) (Draft, error)
}

// ImageGenerator produces image references for one channel. Returning no
// images is a legitimate outcome, not an error.
type ImageGenerator interface {
	Generate(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt string) ([]string, error)
}

// Evaluation is the scorer's verdict on a channel's generated content.
type Evaluation struct {
	Score float64
	Notes []string
}

// Scorer rates the generated content and suggests optimizations.
type Scorer interface {
	Score(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) (Evaluation, error)
}

// DefaultStages wires the five providers into the fixed stage order:
// retrieval, prompt construction, copy, image, scoring.
func DefaultStages(contexts ContextProvider, prompts PromptBuilder, writer Copywriter, images ImageGenerator, scorer Scorer) []Stage {
	return []Stage{
		retrievalStage{provider: contexts},
		promptStage{builder: prompts},
		copyStage{writer: writer},
		imageStage{generator: images},
		scoreStage{scorer: scorer},
	}
}

type retrievalStage struct {
	provider ContextProvider
}

func (retrievalStage) Name() string { return StageRetrieval }

func (s retrievalStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	brandContext, err := s.provider.Retrieve(ctx, req, channel)
	if err != nil {
		return err
	}
	out.BrandContext = brandContext
	return nil
}

type promptStage struct {
	builder PromptBuilder
}

func (promptStage) Name() string { return StagePrompt }

func (s promptStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	prompt, err := s.builder.Build(ctx, req, channel, out.BrandContext)
	if err != nil {
		return err
	}
	out.Prompt = prompt
	return nil
}

type copyStage struct {
	writer Copywriter
}

func (copyStage) Name() string { return StageCopy }

func (s copyStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	draft, err := s.writer.Write(ctx, req, channel, out.Prompt)
	if err != nil {
		return err
	}
	out.Copy = draft.Copy
	out.Variations = draft.Variations
	return nil
}

type imageStage struct {
	generator ImageGenerator
}

func (imageStage) Name() string { return StageImage }

func (s imageStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	images, err := s.generator.Generate(ctx, req, channel, out.Prompt)
	if err != nil {
		return err
	}
	out.Images = images
	return nil
}

type scoreStage struct {
	scorer Scorer
}

func (scoreStage) Name() string { return StageScore }

func (s scoreStage) Run(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *StageOutputs) error {
	eval, err := s.scorer.Score(ctx, req, channel, out)
	if err != nil {
		return err
	}
	out.Score = eval.Score
	out.Notes = eval.Notes
	return nil
}
