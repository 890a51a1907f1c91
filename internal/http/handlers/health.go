package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root describes the service for human callers poking at the base URL.
func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"ok":        true,
		"service":   "contentgen",
		"endpoints": []string{"/v1/campaigns", "/v1/campaigns/{job_id}"},
	})
}
