package score

import (
	"context"
	"math"
	"strings"

	"contentgen/internal/domain"
	"contentgen/internal/pipeline"
)

// HeuristicScorer rates generated content without a model call. The formula
// follows the service's baseline scoring: a 0.5 base plus 0.05 per copy and
// 0.02 per image, clamped to 1.0.
type HeuristicScorer struct{}

// NewHeuristicScorer creates the deterministic scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

var ctaMarkers = []string{"shop", "buy", "grab", "sign up", "learn more", "get", "join", "order", "try", "take a look", "discover"}

// Score evaluates one channel's generated content and emits optimization notes.
func (s *HeuristicScorer) Score(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, out *pipeline.StageOutputs) (pipeline.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Evaluation{}, err
	}

	copies := 1 + len(out.Variations)
	value := 0.5 + 0.05*float64(copies) + 0.02*float64(len(out.Images))

	var notes []string
	lower := strings.ToLower(out.Copy)
	if !containsAny(lower, ctaMarkers) {
		notes = append(notes, "add a clear call to action")
		value -= 0.05
	}
	if channel == domain.ChannelTwitter && len([]rune(out.Copy)) > 280 {
		notes = append(notes, "copy exceeds the 280 character limit")
		value -= 0.1
	}
	if channel == domain.ChannelInstagram && !strings.Contains(out.Copy, "#") {
		notes = append(notes, "add hashtags for discoverability")
	}
	if len(out.Images) == 0 && (channel == domain.ChannelInstagram || channel == domain.ChannelFacebook) {
		notes = append(notes, "visual channels perform better with at least one image")
	}
	if req.IncludeEmoji && !containsEmoji(out.Copy) {
		notes = append(notes, "emoji were requested but none were used")
	}

	value = math.Round(clamp(value)*100) / 100
	return pipeline.Evaluation{Score: value, Notes: notes}, nil
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func containsEmoji(s string) bool {
	for _, r := range s {
		if r >= 0x1F300 && r <= 0x1FAFF || r >= 0x2600 && r <= 0x27BF {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ pipeline.Scorer = (*HeuristicScorer)(nil)
