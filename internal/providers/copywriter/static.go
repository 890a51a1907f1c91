package copywriter

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"contentgen/internal/domain"
	"contentgen/internal/pipeline"
)

const staticProviderName = "static"

// StaticWriter composes deterministic copy without calling any model. It is
// the terminal fallback of the copywriter chain and the default provider when
// no API key is configured.
type StaticWriter struct{}

// NewStaticWriter creates the deterministic copywriter.
func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

// Write renders channel-appropriate copy from the request alone.
func (s *StaticWriter) Write(ctx context.Context, req *domain.CampaignRequest, channel domain.Channel, prompt string) (pipeline.Draft, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Draft{}, err
	}

	title := cases.Title(language.Und).String(req.Title)
	voice := "friendly"
	if req.BrandAssets != nil && req.BrandAssets.BrandVoice != "" {
		voice = req.BrandAssets.BrandVoice
	}

	draft := pipeline.Draft{Copy: s.compose(req, channel, title, voice)}
	if req.VariationsEnabled() {
		draft.Variations = []string{
			decorate(fmt.Sprintf("Don't miss it: %s. %s", title, req.Brief), req.IncludeEmoji, "✨"),
			decorate(fmt.Sprintf("%s is here. %s", title, req.Brief), req.IncludeEmoji, "🎉"),
		}
	}
	return draft, nil
}

func (s *StaticWriter) compose(req *domain.CampaignRequest, channel domain.Channel, title, voice string) string {
	switch channel {
	case domain.ChannelEmail:
		body := fmt.Sprintf("Subject: %s\n\nHi there,\n\n%s Take a look before it's gone.\n\nShop now", title, sentence(req.Brief))
		if req.ContentLength == domain.ContentLengthLong {
			body += fmt.Sprintf("\n\nWhy you'll love it: we kept our %s promise front and center in everything this campaign offers.", strings.ToLower(voice))
		}
		return decorate(body, req.IncludeEmoji, "📧")
	case domain.ChannelInstagram:
		caption := fmt.Sprintf("%s. %s", title, sentence(req.Brief))
		return decorate(caption+"\n\n"+hashtags(req.Title), req.IncludeEmoji, "✨")
	case domain.ChannelTwitter:
		post := fmt.Sprintf("%s: %s Grab yours today.", title, sentence(req.Brief))
		return decorate(truncate(post, 280), req.IncludeEmoji, "🔥")
	case domain.ChannelFacebook:
		post := fmt.Sprintf("%s\n\n%s Tell us what you think in the comments.", title, sentence(req.Brief))
		return decorate(post, req.IncludeEmoji, "👀")
	default:
		return fmt.Sprintf("%s: %s", title, sentence(req.Brief))
	}
}

func sentence(brief string) string {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return brief
	}
	if !strings.HasSuffix(brief, ".") && !strings.HasSuffix(brief, "!") && !strings.HasSuffix(brief, "?") {
		brief += "."
	}
	return brief
}

func hashtags(title string) string {
	words := strings.Fields(strings.ToLower(title))
	tags := make([]string, 0, len(words)+1)
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, w)
		if w != "" {
			tags = append(tags, "#"+w)
		}
	}
	tags = append(tags, "#marketing")
	return strings.Join(tags, " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func decorate(copyText string, includeEmoji bool, emoji string) string {
	if !includeEmoji {
		return copyText
	}
	return emoji + " " + copyText
}
