package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/rollbook/pkg/record"
	"github.com/ssargent/rollbook/pkg/service"
	"github.com/ssargent/rollbook/pkg/store"
)

// maxBodyBytes bounds a student request body
const maxBodyBytes = 64 << 10

// Server holds the API server state
type Server struct {
	roster  Dispatcher
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(roster Dispatcher, config ServerConfig, metrics *Metrics) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		roster:  roster,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListStudents godoc
//
//	@Summary		List students
//	@Description	All student records in insertion order
//	@Tags			students
//	@Produce		json
//	@Success		200	{array}	record.Record
//	@Router			/students [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	res, ok := s.dispatch(w, r, service.Command{Op: service.OpList})
	if !ok {
		return
	}
	recs := res.Records
	if recs == nil {
		recs = []record.Record{}
	}
	sendSuccess(w, recs)
}

// handleCreateStudent godoc
//
//	@Summary		Add a student
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			body	body		StudentRequest	true	"Student"
//	@Success		201		{object}	record.Record
//	@Failure		400		{object}	APIResponse
//	@Failure		409		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/students [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudent(w, r)
	if !ok {
		return
	}

	res, ok := s.dispatch(w, r, service.Command{
		Op:    service.OpAdd,
		Roll:  req.Roll.String(),
		Name:  req.Name,
		Marks: req.Marks.String(),
	})
	if !ok {
		return
	}
	sendCreated(w, res.Record)
}

// handleGetStudent godoc
//
//	@Summary		Find a student by roll number
//	@Tags			students
//	@Produce		json
//	@Param			roll	path		int	true	"Roll number"
//	@Success		200		{object}	record.Record
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/students/{roll} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	res, ok := s.dispatch(w, r, service.Command{
		Op:   service.OpSearch,
		Roll: chi.URLParam(r, "roll"),
	})
	if !ok {
		return
	}
	sendSuccess(w, res.Record)
}

// handleUpdateStudent godoc
//
//	@Summary		Update a student's name and marks
//	@Description	The roll number cannot change
//	@Tags			students
//	@Accept			json
//	@Produce		json
//	@Param			roll	path		int				true	"Roll number"
//	@Param			body	body		StudentRequest	true	"Student"
//	@Success		200		{object}	record.Record
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/students/{roll} [put]
//	@Security		ApiKeyAuth
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudent(w, r)
	if !ok {
		return
	}

	roll := chi.URLParam(r, "roll")
	if req.Roll != "" && !sameRoll(req.Roll.String(), roll) {
		sendError(w, "roll number in body does not match path", http.StatusBadRequest)
		return
	}

	res, ok := s.dispatch(w, r, service.Command{
		Op:    service.OpUpdate,
		Roll:  roll,
		Name:  req.Name,
		Marks: req.Marks.String(),
	})
	if !ok {
		return
	}
	sendSuccess(w, res.Record)
}

// handleDeleteStudent godoc
//
//	@Summary		Delete a student
//	@Tags			students
//	@Produce		json
//	@Param			roll	path		int	true	"Roll number"
//	@Success		200		{object}	record.Record
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/students/{roll} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	res, ok := s.dispatch(w, r, service.Command{
		Op:   service.OpDelete,
		Roll: chi.URLParam(r, "roll"),
	})
	if !ok {
		return
	}
	sendSuccess(w, res.Record)
}

// handleStats godoc
//
//	@Summary		Roll book statistics
//	@Description	Total records, average marks and the top scorer
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	store.Stats
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, ok := s.dispatch(w, r, service.Command{Op: service.OpStats})
	if !ok {
		return
	}
	s.metrics.UpdateRecordStats(res.Stats.Total, res.Stats.Average)
	sendSuccess(w, res.Stats)
}

// handleReload godoc
//
//	@Summary		Reload records from storage
//	@Description	Replaces the in-memory records with the stored ones
//	@Tags			diagnostics
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/reload [post]
//	@Security		ApiKeyAuth
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, ok := s.dispatch(w, r, service.Command{Op: service.OpRefresh})
	if !ok {
		return
	}

	out := ReloadResponse{Records: len(res.Records)}
	if res.Load != nil {
		for _, skipped := range res.Load.Skipped {
			out.Skipped = append(out.Skipped, skipped.Error())
		}
		s.metrics.RecordSkippedLines(len(res.Load.Skipped))
	}
	sendSuccess(w, out)
}

// dispatch runs cmd and writes the error response when it fails. The boolean
// reports whether the caller should write the success response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd service.Command) (*service.Result, bool) {
	start := time.Now()
	res, err := s.roster.Dispatch(r.Context(), cmd)
	s.metrics.RecordOperation(string(cmd.Op), err == nil, time.Since(start))

	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("record operation failed", "op", cmd.Op, "error", err)
		}
		if res != nil && res.Record != nil {
			sendErrorWithData(w, res.Record, err.Error(), status)
		} else {
			sendError(w, err.Error(), status)
		}
		return nil, false
	}

	if cmd.Op != service.OpStats && cmd.Op != service.OpSearch && cmd.Op != service.OpList {
		s.refreshRecordStats(r.Context())
	}
	return res, true
}

// refreshRecordStats updates the record gauges after a change
func (s *Server) refreshRecordStats(ctx context.Context) {
	res, err := s.roster.Dispatch(ctx, service.Command{Op: service.OpStats})
	if err != nil || res.Stats == nil {
		return
	}
	s.metrics.UpdateRecordStats(res.Stats.Total, res.Stats.Average)
}

// statusForError maps roll book errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, record.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeStudent reads a StudentRequest body, writing a 400 when it is not
// valid JSON
func decodeStudent(w http.ResponseWriter, r *http.Request) (StudentRequest, bool) {
	var req StudentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// sameRoll compares two roll numbers by value, so "007" matches "7"
func sameRoll(a, b string) bool {
	x, errA := record.ParseRoll(a)
	y, errB := record.ParseRoll(b)
	return errA == nil && errB == nil && x == y
}
