package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further status transitions may occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ChannelResult holds everything generated for a single channel.
type ChannelResult struct {
	Channel    Channel  `json:"channel"`
	Copy       string   `json:"copy"`
	Variations []string `json:"variations,omitempty"`
	Images     []string `json:"images,omitempty"`
	Score      float64  `json:"score"`
	Notes      []string `json:"notes,omitempty"`
}

// Insights aggregates cross-channel signals. It is computed exactly once,
// after every channel pipeline has reached a terminal outcome.
type Insights struct {
	BestChannel     Channel   `json:"best_channel"`
	OverallScore    float64   `json:"overall_score"`
	TotalVariations int       `json:"total_variations"`
	Recommendations []string  `json:"recommendations,omitempty"`
	FailedChannels  []Channel `json:"failed_channels,omitempty"`
}

// CampaignResult is attached to a job once it completes. Channels keeps the
// request's channel order; failed channels are omitted and accounted for in
// Insights.FailedChannels. Images flattens every channel's references for
// consumers that do not understand per-channel results.
type CampaignResult struct {
	Channels []ChannelResult `json:"channel_results"`
	Images   []string        `json:"images"`
	Insights *Insights       `json:"insights,omitempty"`
}

// ChannelOutcome records one channel pipeline's terminal state before the
// final aggregation. Result is nil when the pipeline failed.
type ChannelOutcome struct {
	Channel Channel        `json:"channel"`
	Result  *ChannelResult `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Job encapsulates the lifecycle of one accepted campaign submission.
type Job struct {
	ID           string              `json:"id"`
	Status       JobStatus           `json:"status"`
	Progress     int                 `json:"progress"`
	Request      CampaignRequest     `json:"request"`
	Result       *CampaignResult     `json:"result,omitempty"`
	Outcomes     []ChannelOutcome    `json:"outcomes,omitempty"`
	StageDone    map[Channel]float64 `json:"stage_done,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Snapshot is the read-only projection of a job exposed to polling clients.
// Result is present only once the job has completed.
type Snapshot struct {
	JobID    string          `json:"job_id"`
	Status   JobStatus       `json:"status"`
	Progress int             `json:"progress"`
	Result   *CampaignResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Snapshot projects the job into its client-facing shape.
func (j *Job) Snapshot() Snapshot {
	s := Snapshot{
		JobID:    j.ID,
		Status:   j.Status,
		Progress: j.Progress,
	}
	if j.Status == JobStatusCompleted {
		s.Result = j.Result
	}
	if j.Status == JobStatusFailed {
		s.Error = j.ErrorMessage
	}
	return s
}
