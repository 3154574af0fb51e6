package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/dgallion1/pdfoutline/internal/upload"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	downloadCookie       = "download_complete"
	downloadCookieMaxAge = 10 // seconds
)

// handleConvert converts an upload synchronously and streams back the
// workbook. The work runs on the shared worker pool.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	job, err := s.receive(w, r)
	if err != nil {
		s.writeError(w, s.log, err)
		return
	}
	log := s.log.With("job_id", job.ID, "filename", job.Filename)

	if err := s.orchestrator.Submit(job); err != nil {
		log.Warn("rejected conversion", "error", err)
		job.Workspace().Remove()
		jsonError(w, "The server is busy. Please try again shortly.", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	if s.cfg.ConvertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConvertTimeout)
		defer cancel()
	}
	select {
	case <-job.Done():
	case <-ctx.Done():
		// The job still finishes; TTL eviction reclaims its workspace.
		log.Warn("stopped waiting for conversion", "error", ctx.Err())
		jsonError(w, "The conversion took too long. Please try again later.", http.StatusGatewayTimeout)
		return
	}
	defer s.orchestrator.Release(job)

	if err := job.Err(); err != nil {
		s.writeError(w, log, err)
		return
	}
	job.MarkDelivered()
	s.deliver(w, r, log, job)
}

// receive validates a multipart upload and stages it in a new workspace.
// The caller owns the returned job's workspace.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) (*pipeline.Job, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &upload.InputError{Reason: upload.ErrTooLarge, Detail: "limit is " + upload.HumanBytes(s.cfg.MaxUploadBytes)}
		}
		return nil, &upload.InputError{Reason: upload.ErrMissingFile, Detail: "expected a multipart form"}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &upload.InputError{Reason: upload.ErrMissingFile}
	}
	defer file.Close()

	if err := s.policy.Check(header.Filename, header.Size); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := s.policy.Check(header.Filename, int64(len(data))); err != nil {
		return nil, err
	}

	ws, err := upload.NewWorkspace(s.cfg.StorageDir)
	if err != nil {
		return nil, err
	}
	if err := ws.SaveInput(data); err != nil {
		ws.Remove()
		return nil, err
	}

	password := ""
	if s.cfg.PasswordFieldEnabled {
		password = r.FormValue("password")
	}
	return pipeline.NewJob(upload.SanitizeFilename(header.Filename), ws, password), nil
}

// deliver streams a finished job's workbook as an attachment.
func (s *Server) deliver(w http.ResponseWriter, r *http.Request, log *slog.Logger, job *pipeline.Job) {
	f, err := os.Open(job.Workspace().OutputPath())
	if err != nil {
		s.writeError(w, log, fmt.Errorf("open result: %w", err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		s.writeError(w, log, fmt.Errorf("stat result: %w", err))
		return
	}

	name := upload.DownloadName(job.Filename)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.SetCookie(w, &http.Cookie{
		Name:   downloadCookie,
		Value:  "true",
		Path:   "/",
		MaxAge: downloadCookieMaxAge,
	})
	http.ServeContent(w, r, "", info.ModTime(), f)
	log.Info("delivered workbook", "download_name", name, "bytes", info.Size())
}

// writeError maps a failure to its status code and user-facing message.
func (s *Server) writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	kind := convert.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case convert.KindInput:
		status = http.StatusBadRequest
		if errors.Is(err, upload.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
	case convert.KindExtraction, convert.KindStructure:
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "kind", kind, "error", err)
	} else {
		log.Warn("request rejected", "kind", kind, "error", err)
	}
	jsonError(w, convert.UserMessage(err), status)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
