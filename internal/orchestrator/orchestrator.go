package orchestrator

import (
	"context"
	"errors"
	"sort"
	"sync"

	"contentgen/internal/domain"
	"contentgen/internal/infra"
	"contentgen/internal/metrics"
	"contentgen/internal/pipeline"
)

// Orchestrator owns the job state machine: it validates submissions, fans one
// channel pipeline out per requested channel, aggregates their outcomes, and
// performs the single terminal transition. All cross-pipeline coordination
// happens through the job store's atomic Update; pipelines never share
// mutable state directly.
type Orchestrator struct {
	store   domain.JobStore
	runner  *pipeline.Runner
	logger  infra.Logger
	metrics *metrics.Metrics

	wg sync.WaitGroup
}

// New wires the orchestrator. metrics may be nil in tests.
func New(store domain.JobStore, runner *pipeline.Runner, logger infra.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{store: store, runner: runner, logger: logger, metrics: m}
}

// Submit validates the request and, on success, creates a job and starts its
// channel pipelines in the background. The returned id can be polled
// immediately. Invalid requests yield domain.ErrInvalidRequest and create no
// job.
func (o *Orchestrator) Submit(ctx context.Context, req domain.CampaignRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	jobID, err := o.store.Create(ctx, req)
	if err != nil {
		return "", err
	}
	if err := o.store.Update(ctx, jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusRunning
	}); err != nil {
		return "", err
	}

	if o.metrics != nil {
		o.metrics.JobsSubmitted.Inc()
		o.metrics.JobsInFlight.Inc()
	}
	o.logger.Info().Str("job_id", jobID).Int("channels", len(req.Channels)).Msg("orchestrator: job accepted")

	o.wg.Add(1)
	go o.execute(jobID, req)

	return jobID, nil
}

// Snapshot returns the polling projection of the job's latest committed
// state. It never blocks on in-flight pipeline work.
func (o *Orchestrator) Snapshot(ctx context.Context, jobID string) (domain.Snapshot, error) {
	job, err := o.store.Get(ctx, jobID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return job.Snapshot(), nil
}

// Wait blocks until every background job started by Submit has reached its
// terminal transition. Intended for graceful shutdown and tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// execute runs the fan-out for one job. It detaches from the submit request's
// context: a client that stops polling does not cancel the job.
func (o *Orchestrator) execute(jobID string, req domain.CampaignRequest) {
	defer o.wg.Done()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, channel := range req.Channels {
		wg.Add(1)
		go func(channel domain.Channel) {
			defer wg.Done()
			o.runChannel(ctx, jobID, req, channel)
		}(channel)
	}
	wg.Wait()

	o.finalize(ctx, jobID, req)
}

func (o *Orchestrator) runChannel(ctx context.Context, jobID string, req domain.CampaignRequest, channel domain.Channel) {
	total := len(req.Channels)
	result, err := o.runner.Run(ctx, &req, channel, func(done, totalStages int) {
		updateErr := o.store.Update(ctx, jobID, func(j *domain.Job) {
			if j.StageDone == nil {
				j.StageDone = make(map[domain.Channel]float64, totalStages)
			}
			j.StageDone[channel] = float64(done) / float64(totalStages)
			j.Progress = overallProgress(j, total)
		})
		if updateErr != nil {
			o.logger.Error().Err(updateErr).Str("job_id", jobID).Msg("orchestrator: progress update failed")
		}
	})

	outcome := domain.ChannelOutcome{Channel: channel}
	if err != nil {
		outcome.Error = err.Error()
		o.logger.Warn().Err(err).Str("job_id", jobID).Str("channel", string(channel)).Msg("orchestrator: channel pipeline failed")
		if o.metrics != nil {
			o.metrics.ChannelsFailed.WithLabelValues(string(channel), failedStage(err)).Inc()
		}
	} else {
		outcome.Result = result
	}

	if updateErr := o.store.Update(ctx, jobID, func(j *domain.Job) {
		if j.StageDone == nil {
			j.StageDone = make(map[domain.Channel]float64, total)
		}
		j.StageDone[channel] = 1
		j.Outcomes = append(j.Outcomes, outcome)
		j.Progress = overallProgress(j, total)
	}); updateErr != nil {
		o.logger.Error().Err(updateErr).Str("job_id", jobID).Msg("orchestrator: outcome update failed")
	}
}

// finalize performs the single terminal transition once every channel
// pipeline has recorded its outcome.
func (o *Orchestrator) finalize(ctx context.Context, jobID string, req domain.CampaignRequest) {
	var final domain.JobStatus
	err := o.store.Update(ctx, jobID, func(j *domain.Job) {
		succeeded := 0
		for _, outcome := range j.Outcomes {
			if outcome.Result != nil {
				succeeded++
			}
		}
		if succeeded == 0 {
			j.Status = domain.JobStatusFailed
			j.ErrorMessage = domain.ErrAllChannelsFailed.Error()
		} else {
			j.Status = domain.JobStatusCompleted
			j.Result = buildResult(req.Channels, j.Outcomes)
		}
		j.Progress = 100
		final = j.Status
	})
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: terminal update failed")
		return
	}

	if o.metrics != nil {
		o.metrics.JobsInFlight.Dec()
		if final == domain.JobStatusCompleted {
			o.metrics.JobsCompleted.Inc()
		} else {
			o.metrics.JobsFailed.Inc()
		}
	}
	o.logger.Info().Str("job_id", jobID).Str("status", string(final)).Msg("orchestrator: job finished")
}

// overallProgress is the arithmetic mean of per-channel completion fractions.
// 100 is reserved for the terminal transition so a polling client never sees
// a full bar on a non-terminal job.
func overallProgress(j *domain.Job, totalChannels int) int {
	if totalChannels == 0 {
		return 0
	}
	var sum float64
	for _, fraction := range j.StageDone {
		sum += fraction
	}
	pct := int(sum / float64(totalChannels) * 100)
	if pct > 99 {
		pct = 99
	}
	return pct
}

// buildResult assembles the completed result: successful channels in request
// order, the flat image list, and the cross-channel insights. Failed channels
// are omitted from the result and recorded in Insights.FailedChannels so
// aggregate scores never average over channels that produced nothing.
func buildResult(order []domain.Channel, outcomes []domain.ChannelOutcome) *domain.CampaignResult {
	byChannel := make(map[domain.Channel]domain.ChannelOutcome, len(outcomes))
	for _, outcome := range outcomes {
		byChannel[outcome.Channel] = outcome
	}

	result := &domain.CampaignResult{Images: []string{}}
	insights := &domain.Insights{}
	var scoreSum float64

	for _, channel := range order {
		outcome, ok := byChannel[channel]
		if !ok || outcome.Result == nil {
			insights.FailedChannels = append(insights.FailedChannels, channel)
			continue
		}
		cr := *outcome.Result
		result.Channels = append(result.Channels, cr)
		result.Images = append(result.Images, cr.Images...)
		insights.TotalVariations += len(cr.Variations)
		scoreSum += cr.Score
		if insights.BestChannel == "" || cr.Score > bestScore(result.Channels, insights.BestChannel) {
			insights.BestChannel = cr.Channel
		}
	}

	if n := len(result.Channels); n > 0 {
		insights.OverallScore = round2(scoreSum / float64(n))
	}
	insights.Recommendations = recommend(result.Channels, insights)
	result.Insights = insights
	return result
}

func bestScore(channels []domain.ChannelResult, best domain.Channel) float64 {
	for _, cr := range channels {
		if cr.Channel == best {
			return cr.Score
		}
	}
	return 0
}

// recommend derives cross-channel recommendations from the per-channel notes
// plus the score spread.
func recommend(channels []domain.ChannelResult, insights *domain.Insights) []string {
	seen := make(map[string]struct{})
	var recs []string
	for _, cr := range channels {
		for _, note := range cr.Notes {
			if _, dup := seen[note]; dup {
				continue
			}
			seen[note] = struct{}{}
			recs = append(recs, note)
		}
	}
	sort.Strings(recs)
	if len(recs) > 5 {
		recs = recs[:5]
	}
	if len(channels) > 1 && insights.BestChannel != "" {
		recs = append(recs, "focus budget on the "+string(insights.BestChannel)+" channel, it scored highest")
	}
	if len(insights.FailedChannels) > 0 {
		recs = append(recs, "retry the failed channels once the provider issue is resolved")
	}
	return recs
}

func failedStage(err error) string {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return "unknown"
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
