package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nitishgarg26/pdf-mcq/internal/export"
	"github.com/nitishgarg26/pdf-mcq/internal/pipeline"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// finishedJob resolves a job that has reached a terminal state, writing the
// appropriate error response otherwise.
func (s *Server) finishedJob(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	if !job.CurrentStatus().Terminal() {
		jsonError(w, "job still processing", http.StatusConflict)
		return nil
	}
	return job
}

// handleResult returns the question records as JSON. An optional
// min_confidence query parameter drops records below the given confidence;
// the default of zero keeps everything.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}

	minConf := 0.0
	if v := r.URL.Query().Get("min_confidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 100 {
			jsonError(w, "min_confidence must be a number between 0 and 100", http.StatusBadRequest)
			return
		}
		minConf = f
	}

	questions, stats := job.Result()
	if minConf > 0 {
		filtered := make([]segment.Question, 0, len(questions))
		for _, q := range questions {
			if q.Confidence >= minConf {
				filtered = append(filtered, q)
			}
		}
		questions = filtered
	}
	if questions == nil {
		questions = []segment.Question{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    job.ID,
		"status":    job.CurrentStatus(),
		"questions": questions,
		"stats":     stats,
		"warnings":  job.Warnings(),
	})
}

func (s *Server) handleDocx(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}
	data := job.Docx()
	if data == nil {
		jsonError(w, "no document available for this job", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(job, "docx")))
	w.Write(data)
}

func (s *Server) handleXlsx(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}
	questions, stats := job.Result()
	data, err := export.Workbook(questions, stats)
	if err != nil {
		s.log.Error("xlsx export failed", "job_id", job.ID, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(job, "xlsx")))
	w.Write(data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	job := s.finishedJob(w, r)
	if job == nil {
		return
	}
	questions, stats := job.Result()
	html, err := export.HTMLPreview(questions, stats)
	if err != nil {
		s.log.Error("preview render failed", "job_id", job.ID, "error", err)
		jsonError(w, "preview failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func exportName(job *pipeline.Job, ext string) string {
	base := job.Filename
	if base == "" {
		base = job.ID
	}
	if len(base) > 4 && base[len(base)-4:] == ".pdf" {
		base = base[:len(base)-4]
	}
	return base + "-questions." + ext
}
