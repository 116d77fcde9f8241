package pipeline

import (
	"sync"
	"time"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting"
	StatusRecognizing JobStatus = "recognizing"
	StatusSegmenting  JobStatus = "segmenting"
	StatusBuilding    JobStatus = "building"
	StatusExporting   JobStatus = "exporting"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
	StatusCached      JobStatus = "cached"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusCached:
		return true
	}
	return false
}

// Progress tracks per-phase counters exposed to status polling.
type Progress struct {
	TotalPages        int      `json:"total_pages"`
	RegionsProcessed  int      `json:"regions_processed"`
	QuestionsFound    int      `json:"questions_found"`
	LowQualityRegions int      `json:"low_quality_regions"`
	Warnings          []string `json:"warnings"`
}

// Job tracks the state of a single PDF extraction.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData  []byte
	questions []segment.Question
	stats     segment.Stats
	warnings  []string
	docx      []byte
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// CurrentStatus returns the status under the job lock.
func (j *Job) CurrentStatus() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status
}

// AddWarning records a non-fatal problem.
func (j *Job) AddWarning(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, msg)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// SetTotalPages records the page count once the PDF is opened.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// IncrRegionsProcessed bumps the processed-region counter.
func (j *Job) IncrRegionsProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.RegionsProcessed++
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the finished question sequence and aggregate stats, and
// releases the upload bytes.
func (j *Job) SetResult(questions []segment.Question, stats segment.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.questions = questions
	j.stats = stats
	j.Progress.QuestionsFound = stats.QuestionsFound
	j.Progress.LowQualityRegions = stats.LowQualityRegions
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the question sequence and stats.
func (j *Job) Result() ([]segment.Question, segment.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.questions, j.stats
}

// Warnings returns accumulated warnings.
func (j *Job) Warnings() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.warnings...)
}

// SetDocx stores the generated Word document bytes.
func (j *Job) SetDocx(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.docx = data
	j.UpdatedAt = time.Now()
}

// Docx returns the generated Word document bytes, nil until export finishes.
func (j *Job) Docx() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.docx
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	warnings := j.Progress.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			TotalPages:        j.Progress.TotalPages,
			RegionsProcessed:  j.Progress.RegionsProcessed,
			QuestionsFound:    j.Progress.QuestionsFound,
			LowQualityRegions: j.Progress.LowQualityRegions,
			Warnings:          warnings,
		},
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
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

// List returns snapshots of all live jobs.
func (s *JobStore) List() []JobSnapshot {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	return out
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
