package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/firstlist/presentd/internal/domain"
	"github.com/firstlist/presentd/internal/middleware"
	"github.com/firstlist/presentd/internal/service"
)

const maxPromptLength = 4000

type createPresentationRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"userId"`
}

type jobView struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PresentationCreate accepts a generation request, records the job and hands
// it to the worker queue.
func (a *App) PresentationCreate(w http.ResponseWriter, r *http.Request) {
	var req createPresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.Prompt == "" || req.UserID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt and userId are required")
		return
	}
	if len(req.Prompt) > maxPromptLength {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt too long")
		return
	}

	sub, err := a.Service.Submit(r.Context(), req.Prompt, req.UserID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create presentation job")
		return
	}

	resp := map[string]any{
		"message": "Presentation Generated Successfully",
		"jobId":   sub.Job.ID,
		"status":  string(sub.Job.Status),
		"job": jobView{
			ID:        sub.Job.ID,
			Prompt:    sub.Job.Prompt,
			UserID:    sub.Job.UserID,
			Status:    string(sub.Job.Status),
			CreatedAt: sub.Job.CreatedAt,
			UpdatedAt: sub.Job.UpdatedAt,
		},
	}
	if !sub.Queued {
		// The record exists but the queue hand-off failed; clients will keep
		// polling PENDING until the repair pass re-publishes it.
		resp["degraded"] = true
	}
	a.json(w, http.StatusOK, resp)
}

// PresentationStatus reports the live job status.
func (a *App) PresentationStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}

	status, err := a.Service.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Presentation job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to get presentation status")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, map[string]string{
		"jobId":   jobID,
		"status":  string(status),
		"message": service.StatusMessage(status, locale),
	})
}

// PresentationGet returns the finished presentation payload.
func (a *App) PresentationGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}

	view, err := a.Service.Result(r.Context(), jobID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "Presentation job not found")
		case errors.Is(err, domain.ErrResultNotReady):
			a.error(w, http.StatusNotFound, "not_ready", "Presentation not found or still processing")
		default:
			a.Logger.Error().Err(err).Str("job_id", jobID).Msg("result lookup failed")
			a.error(w, http.StatusInternalServerError, "internal", "Failed to retrieve presentation")
		}
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"jobId":        view.JobID,
		"status":       string(view.Status),
		"presentation": json.RawMessage(view.Presentation),
	})
}
