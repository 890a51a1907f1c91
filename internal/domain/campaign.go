package domain

import (
	"fmt"
	"strings"
)

// Channel enumerates the marketing surfaces content can be generated for.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelInstagram Channel = "instagram"
	ChannelFacebook  Channel = "facebook"
	ChannelTwitter   Channel = "twitter"
)

var knownChannels = map[Channel]struct{}{
	ChannelEmail:     {},
	ChannelInstagram: {},
	ChannelFacebook:  {},
	ChannelTwitter:   {},
}

// KnownChannel reports whether the identifier is a supported channel.
func KnownChannel(ch Channel) bool {
	_, ok := knownChannels[ch]
	return ok
}

// AudienceTarget narrows who the generated content should speak to.
type AudienceTarget struct {
	AgeRange           string   `json:"age_range"`
	Gender             string   `json:"gender"`
	Location           string   `json:"location"`
	Interests          []string `json:"interests"`
	PlatformPreference string   `json:"platform_preference"`
}

// BrandAssets carries the visual and tonal identity applied during generation.
type BrandAssets struct {
	PrimaryColor   string   `json:"primary_color"`
	SecondaryColor string   `json:"secondary_color"`
	LogoURL        string   `json:"logo_url"`
	BrandVoice     string   `json:"brand_voice"`
	Tone           string   `json:"tone"`
	BrandValues    []string `json:"brand_values"`
}

// Content length presets accepted by CampaignRequest.
const (
	ContentLengthShort  = "short"
	ContentLengthMedium = "medium"
	ContentLengthLong   = "long"
)

const (
	// DefaultBrandProfileID is assumed when the request omits a profile.
	DefaultBrandProfileID = "demo"
	// DefaultAudienceAgeRange mirrors the documented request default.
	DefaultAudienceAgeRange = "25-45"
)

// CampaignRequest is the accepted campaign submission. It is immutable once a
// job has been created from it.
type CampaignRequest struct {
	Title              string          `json:"title"`
	Brief              string          `json:"brief"`
	BrandProfileID     string          `json:"brand_profile_id"`
	Channels           []Channel       `json:"channels"`
	AudienceTarget     *AudienceTarget `json:"audience_target,omitempty"`
	BrandAssets        *BrandAssets    `json:"brand_assets,omitempty"`
	GenerateVariations *bool           `json:"generate_variations,omitempty"`
	ContentLength      string          `json:"content_length"`
	IncludeEmoji       bool            `json:"include_emoji"`
}

// Normalize applies server defaults for omitted optional fields.
func (r *CampaignRequest) Normalize() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Brief = strings.TrimSpace(r.Brief)
	if r.BrandProfileID == "" {
		r.BrandProfileID = DefaultBrandProfileID
	}
	switch r.ContentLength {
	case ContentLengthShort, ContentLengthMedium, ContentLengthLong:
	default:
		r.ContentLength = ContentLengthMedium
	}
}

// VariationsEnabled reports whether copy variations were requested. The field
// defaults to true when the client omits it.
func (r CampaignRequest) VariationsEnabled() bool {
	if r.GenerateVariations == nil {
		return true
	}
	return *r.GenerateVariations
}

// Validate rejects submissions that must not produce a job. Unrecognized
// channels are an error, never silently dropped.
func (r CampaignRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Brief) == "" {
		return fmt.Errorf("%w: brief is required", ErrInvalidRequest)
	}
	if len(r.Channels) == 0 {
		return fmt.Errorf("%w: at least one channel is required", ErrInvalidRequest)
	}
	seen := make(map[Channel]struct{}, len(r.Channels))
	for _, ch := range r.Channels {
		if !KnownChannel(ch) {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalidRequest, ch)
		}
		if _, dup := seen[ch]; dup {
			return fmt.Errorf("%w: duplicate channel %q", ErrInvalidRequest, ch)
		}
		seen[ch] = struct{}{}
	}
	return nil
}
