package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentgen/internal/domain"
	"contentgen/internal/middleware"
)

type campaignAcceptedResponse struct {
	JobID    string           `json:"job_id"`
	Status   domain.JobStatus `json:"status"`
	Progress int              `json:"progress"`
}

// CampaignSubmit accepts a campaign request and starts its generation job.
// The response carries the job id to poll; generation happens in the
// background.
func (a *App) CampaignSubmit(w http.ResponseWriter, r *http.Request) {
	var req domain.CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	if req.AudienceTarget != nil && req.AudienceTarget.Location == "" {
		if country := middleware.CountryFromContext(r.Context()); country != "" {
			req.AudienceTarget.Location = country
		}
	}

	jobID, err := a.Orchestrator.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: campaign submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}

	a.json(w, http.StatusAccepted, campaignAcceptedResponse{
		JobID:    jobID,
		Status:   domain.JobStatusQueued,
		Progress: 0,
	})
}

// CampaignStatus returns the polling snapshot for a job. The result field is
// present only once the job has completed.
func (a *App) CampaignStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	snapshot, err := a.Orchestrator.Snapshot(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: snapshot failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, snapshot)
}
