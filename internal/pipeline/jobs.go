package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/upload"
	"github.com/google/uuid"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDelivered  JobStatus = "delivered"
)

// Job tracks the state of a single PDF conversion.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Result convert.Result `json:"result"`
	Error  string         `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	workspace *upload.Workspace
	password  string
	err       error
	done      chan struct{}
}

// NewJob creates a queued job whose input is already saved in ws.
func NewJob(filename string, ws *upload.Workspace, password string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		workspace: ws,
		password:  password,
		done:      make(chan struct{}),
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Finish records the outcome and releases anyone waiting on Done. Only the
// first call has any effect.
func (j *Job) Finish(res convert.Result, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	select {
	case <-j.done:
		return
	default:
	}
	j.Result = res
	j.err = err
	if err != nil {
		j.Status = StatusFailed
		j.Error = convert.UserMessage(err)
	} else {
		j.Status = StatusCompleted
	}
	j.Phase = "done"
	j.UpdatedAt = time.Now()
	close(j.done)
}

// Done is closed once the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the conversion error, nil while running or on success.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Workspace returns the job's private directory.
func (j *Job) Workspace() *upload.Workspace {
	return j.workspace
}

// Password returns the password supplied with the upload, if any.
func (j *Job) Password() string {
	return j.password
}

// MarkDelivered moves a completed job to delivered. It reports false if the
// job is not completed or was already delivered.
func (j *Job) MarkDelivered() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return false
	}
	j.Status = StatusDelivered
	j.UpdatedAt = time.Now()
	return true
}

// finished reports whether Done is closed.
func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string         `json:"job_id"`
	Status    JobStatus      `json:"status"`
	Phase     string         `json:"phase"`
	Filename  string         `json:"filename"`
	Result    convert.Result `json:"result"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Result:    j.Result,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	ttl     time.Duration
	onEvict func(*Job)
}

// NewJobStore returns a store that drops finished jobs idle for longer than
// ttl. onEvict, if set, runs for each dropped job outside the store lock.
func NewJobStore(ttl time.Duration, onEvict func(*Job)) *JobStore {
	return &JobStore{
		jobs:    make(map[string]*Job),
		ttl:     ttl,
		onEvict: onEvict,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Delete removes a job without calling onEvict.
func (s *JobStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs. Jobs still queued or running are kept.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	now := time.Now()
	var expired []*Job
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl && job.finished() {
			expired = append(expired, job)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, job := range expired {
			s.onEvict(job)
		}
	}
	return len(expired)
}

// Drain removes every job, finished or not, and runs onEvict for each.
func (s *JobStore) Drain() int {
	s.mu.Lock()
	all := make([]*Job, 0, len(s.jobs))
	for id, job := range s.jobs {
		all = append(all, job)
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, job := range all {
			s.onEvict(job)
		}
	}
	return len(all)
}
