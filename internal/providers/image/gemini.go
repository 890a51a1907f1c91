package image

import (
	"context"
	"fmt"

	"contentgen/internal/domain"
	"contentgen/internal/pipeline"
	"contentgen/internal/providers/genai"
)

// Visual-first channels get an extra image.
var channelQuantity = map[domain.Channel]int{
	domain.ChannelInstagram: 2,
	domain.ChannelFacebook:  2,
}

// GeminiGenerator produces image references through the Gemini facade. The
// facade itself degrades to placeholder references when no API key is
// configured, so Generate only fails on context cancellation.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator wraps the shared Gemini client as the image stage provider.
func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

// Generate returns image references for the channel.
func (g *GeminiGenerator) Generate(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt string) ([]string, error) {
	quantity := channelQuantity[channel]
	if quantity == 0 {
		quantity = 1
	}
	return g.client.GenerateImages(ctx, genai.ImageRequest{
		Prompt:   fmt.Sprintf("Create a campaign visual for the %s channel.\n\n%s", channel, prompt),
		Label:    string(channel),
		Quantity: quantity,
	})
}

var _ pipeline.ImageGenerator = (*GeminiGenerator)(nil)
