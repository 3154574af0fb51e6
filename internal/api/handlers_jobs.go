package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.receive(w, r)
	if err != nil {
		s.writeError(w, s.log, err)
		return
	}

	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("rejected job", "job_id", job.ID, "error", err)
		job.Workspace().Remove()
		jsonError(w, "The server is busy. Please try again shortly.", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":       job.ID,
		"status":       pipeline.StatusQueued,
		"status_url":   fmt.Sprintf("/api/jobs/%s", job.ID),
		"download_url": fmt.Sprintf("/api/jobs/%s/download", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// handleJobDownload streams a completed job's workbook once, then forgets
// the job and deletes its files.
func (s *Server) handleJobDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	log := s.log.With("job_id", job.ID, "filename", job.Filename)

	switch job.Snapshot().Status {
	case pipeline.StatusQueued, pipeline.StatusExtracting:
		jsonError(w, "job is not finished", http.StatusConflict)
		return
	case pipeline.StatusFailed:
		s.orchestrator.Release(job)
		s.writeError(w, log, job.Err())
		return
	}

	if !job.MarkDelivered() {
		jsonError(w, "result was already downloaded", http.StatusGone)
		return
	}
	defer s.orchestrator.Release(job)
	s.deliver(w, r, log, job)
}
