package retrieval

import (
	"context"
	"fmt"
	"strings"

	"contentgen/internal/domain"
)

// BrandKnowledge is the retrievable profile for one brand.
type BrandKnowledge struct {
	BrandVoice     string
	TargetAudience string
	KeyMessages    []string
	Tone           string
	BrandValues    []string
}

// Built-in knowledge base. In production this would be populated from brand
// documents behind a vector index; the static profiles keep retrieval
// deterministic and always available.
var brandKnowledge = map[string]BrandKnowledge{
	"demo": {
		BrandVoice:     "Professional, friendly, and approachable",
		TargetAudience: "Tech-savvy professionals aged 25-45",
		KeyMessages:    []string{"Innovation", "Quality", "Customer-first approach"},
		Tone:           "Conversational yet professional",
		BrandValues:    []string{"Trust", "Innovation", "Excellence"},
	},
	"tech_startup": {
		BrandVoice:     "Innovative, energetic, and forward-thinking",
		TargetAudience: "Early adopters and tech enthusiasts",
		KeyMessages:    []string{"Cutting-edge technology", "Disruption", "Future-focused"},
		Tone:           "Bold and confident",
		BrandValues:    []string{"Innovation", "Speed", "Disruption"},
	},
	"fashion_brand": {
		BrandVoice:     "Trendy, stylish, and aspirational",
		TargetAudience: "Fashion-conscious individuals aged 18-35",
		KeyMessages:    []string{"Style", "Self-expression", "Trend-setting"},
		Tone:           "Inspirational and trendy",
		BrandValues:    []string{"Creativity", "Individuality", "Style"},
	},
}

// StaticProvider retrieves brand context from the built-in knowledge base,
// overlaid with any brand/audience parameters carried by the request itself.
type StaticProvider struct{}

// NewStaticProvider creates the knowledge-base backed retrieval provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// Retrieve renders the brand-context block for the campaign. Unknown profile
// ids fall back to the demo profile rather than failing; retrieval is allowed
// to degrade, never to abort a pipeline on its own.
func (p *StaticProvider) Retrieve(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	knowledge, ok := brandKnowledge[req.BrandProfileID]
	if !ok {
		knowledge = brandKnowledge[domain.DefaultBrandProfileID]
	}

	if assets := req.BrandAssets; assets != nil {
		if assets.BrandVoice != "" {
			knowledge.BrandVoice = assets.BrandVoice
		}
		if assets.Tone != "" {
			knowledge.Tone = assets.Tone
		}
		if len(assets.BrandValues) > 0 {
			knowledge.BrandValues = assets.BrandValues
		}
	}
	if audience := req.AudienceTarget; audience != nil {
		knowledge.TargetAudience = describeAudience(audience)
	}

	var b strings.Builder
	b.WriteString("Brand Context:\n")
	fmt.Fprintf(&b, "- Voice: %s\n", knowledge.BrandVoice)
	fmt.Fprintf(&b, "- Target Audience: %s\n", knowledge.TargetAudience)
	fmt.Fprintf(&b, "- Key Messages: %s\n", strings.Join(knowledge.KeyMessages, ", "))
	fmt.Fprintf(&b, "- Tone: %s\n", knowledge.Tone)
	fmt.Fprintf(&b, "- Values: %s\n", strings.Join(knowledge.BrandValues, ", "))
	b.WriteString("\nCampaign Context:\n")
	fmt.Fprintf(&b, "- Title: %s\n", req.Title)
	fmt.Fprintf(&b, "- Brief: %s\n", req.Brief)
	return b.String(), nil
}

func describeAudience(audience *domain.AudienceTarget) string {
	parts := make([]string, 0, 4)
	if audience.Gender != "" && audience.Gender != "all" {
		parts = append(parts, audience.Gender)
	}
	ageRange := audience.AgeRange
	if ageRange == "" {
		ageRange = domain.DefaultAudienceAgeRange
	}
	parts = append(parts, fmt.Sprintf("aged %s", ageRange))
	if audience.Location != "" && audience.Location != "global" {
		parts = append(parts, fmt.Sprintf("in %s", audience.Location))
	}
	if len(audience.Interests) > 0 {
		parts = append(parts, fmt.Sprintf("interested in %s", strings.Join(audience.Interests, ", ")))
	}
	return "Audience " + strings.Join(parts, ", ")
}
