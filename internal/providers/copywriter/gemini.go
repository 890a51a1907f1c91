package copywriter

import (
	"context"
	"errors"
	"strings"

	"contentgen/internal/domain"
	"contentgen/internal/pipeline"
	"contentgen/internal/providers/genai"
)

const geminiProviderName = "gemini"

const systemInstruction = "You are a marketing copywriter. Return the primary copy first. " +
	"When variations are requested, append each variation as its own paragraph separated by a blank line."

// GeminiOptions configures the model-backed copywriter.
type GeminiOptions struct {
	Client *genai.Client
	// Fallback handles the request when the model call fails. Required.
	Fallback pipeline.Copywriter
	// OnFallback, when set, observes every degradation with its reason.
	OnFallback func(reason string, err error)
}

// GeminiWriter generates copy through the Gemini facade and degrades to its
// fallback writer on any provider failure, so a copy stage only fails when
// the fallback itself does.
type GeminiWriter struct {
	client     *genai.Client
	fallback   pipeline.Copywriter
	onFallback func(reason string, err error)
}

// NewGeminiWriter builds a model-backed copywriter with a mandatory fallback.
func NewGeminiWriter(opts GeminiOptions) (*GeminiWriter, error) {
	if opts.Client == nil {
		return nil, errors.New("gemini client is required")
	}
	if opts.Fallback == nil {
		return nil, errors.New("fallback copywriter is required")
	}
	return &GeminiWriter{
		client:     opts.Client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

// Write asks the model for channel copy, parsing variations from the
// paragraph structure of the completion.
func (g *GeminiWriter) Write(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt string) (pipeline.Draft, error) {
	if !g.client.Configured() {
		return g.useFallback(ctx, req, channel, prompt, "not_configured", nil)
	}
	completion, err := g.client.GenerateText(ctx, genai.TextRequest{
		System: systemInstruction,
		Prompt: prompt,
	})
	if err != nil {
		return g.useFallback(ctx, req, channel, prompt, "generate_text", err)
	}
	draft := parseDraft(completion, req.VariationsEnabled())
	if draft.Copy == "" {
		return g.useFallback(ctx, req, channel, prompt, "empty_completion", nil)
	}
	return draft, nil
}

func (g *GeminiWriter) useFallback(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt, reason string, err error) (pipeline.Draft, error) {
	if g.onFallback != nil {
		g.onFallback(reason, err)
	}
	return g.fallback.Write(ctx, req, channel, prompt)
}

// parseDraft splits a completion into primary copy and up to two variations,
// using blank-line paragraph boundaries per the system instruction.
func parseDraft(completion string, wantVariations bool) pipeline.Draft {
	completion = strings.TrimSpace(completion)
	if !wantVariations {
		return pipeline.Draft{Copy: completion}
	}
	blocks := splitBlocks(completion)
	if len(blocks) == 0 {
		return pipeline.Draft{}
	}
	draft := pipeline.Draft{Copy: blocks[0]}
	for _, block := range blocks[1:] {
		draft.Variations = append(draft.Variations, block)
		if len(draft.Variations) == 2 {
			break
		}
	}
	return draft
}

func splitBlocks(s string) []string {
	var blocks []string
	for _, block := range strings.Split(s, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

var _ pipeline.Copywriter = (*GeminiWriter)(nil)
var _ pipeline.Copywriter = (*StaticWriter)(nil)
