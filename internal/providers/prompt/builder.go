package prompt

import (
	"context"
	"fmt"
	"strings"

	"contentgen/internal/domain"
)

// channelGuidance captures the per-channel constraints the generation prompt
// must convey.
var channelGuidance = map[domain.Channel]string{
	domain.ChannelEmail:     "Write an email with a compelling subject line and a body that drives clicks. Include a clear call to action.",
	domain.ChannelInstagram: "Write an Instagram caption. Keep it punchy, visually evocative, and finish with 3-5 relevant hashtags.",
	domain.ChannelFacebook:  "Write a Facebook post that invites engagement (comments, shares). Conversational, no hashtag walls.",
	domain.ChannelTwitter:   "Write a post of at most 280 characters. Lead with the hook, end with a call to action.",
}

var lengthGuidance = map[string]string{
	domain.ContentLengthShort:  "Keep it very concise: one or two sentences.",
	domain.ContentLengthMedium: "Use a moderate length: a short paragraph.",
	domain.ContentLengthLong:   "Write a fuller piece: multiple paragraphs where the channel allows.",
}

// Builder assembles the channel-specific generation prompt from the campaign
// request and the retrieved brand context.
type Builder struct{}

// NewBuilder creates the prompt-construction provider.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the prompt for one channel.
func (b *Builder) Build(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, brandContext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	guidance, ok := channelGuidance[channel]
	if !ok {
		return "", fmt.Errorf("no guidance for channel %q", channel)
	}

	var p strings.Builder
	fmt.Fprintf(&p, "Create marketing copy for the %s channel.\n\n", channel)
	fmt.Fprintf(&p, "Campaign: %s\n", req.Title)
	fmt.Fprintf(&p, "Brief: %s\n\n", req.Brief)
	if brandContext != "" {
		p.WriteString(brandContext)
		p.WriteString("\n")
	}
	p.WriteString(guidance)
	p.WriteString("\n")
	if hint, ok := lengthGuidance[req.ContentLength]; ok {
		p.WriteString(hint)
		p.WriteString("\n")
	}
	if req.IncludeEmoji {
		p.WriteString("Use a few fitting emoji.\n")
	} else {
		p.WriteString("Do not use emoji.\n")
	}
	if req.VariationsEnabled() {
		p.WriteString("Provide two alternative phrasings after the primary copy.\n")
	}
	return p.String(), nil
}
