package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/output"
	"github.com/bimmerbailey/recase/internal/pipeline"
	"github.com/bimmerbailey/recase/internal/preserve"
	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/bimmerbailey/recase/internal/worker"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// TransformRequest is the body of POST /v1/transform and POST /v1/jobs.
type TransformRequest struct {
	Text               string           `json:"text"`
	TransformationKey  string           `json:"transformationKey"`
	PreservationConfig *preserve.Config `json:"preservationConfig,omitempty"`
}

// Validate checks the request shape. Whether the key exists is decided by
// the dispatcher.
func (r TransformRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TransformationKey,
			validation.Required,
			validation.Length(1, 64),
			validation.Match(keyPattern).Error("must be a lowercase kebab-case key"),
		),
	)
}

func (s *Server) preservation(req TransformRequest) preserve.Config {
	if req.PreservationConfig != nil {
		return *req.PreservationConfig
	}
	return s.defaults
}

// TransformResponse is returned on success.
type TransformResponse struct {
	Result           string                               `json:"result"`
	Warnings         []preserve.MissingPlaceholderWarning `json:"warnings"`
	Tier             pipeline.Tier                        `json:"tier"`
	ProcessingTimeMs float64                              `json:"processingTimeMs"`
}

// ErrorResponse is returned on failure. Text echoes the unmodified input
// whenever the request body could be read.
type ErrorResponse struct {
	Error string `json:"error"`
	Text  string `json:"text"`
}

// JobResponse describes a background job.
type JobResponse struct {
	ID               string                               `json:"id"`
	Key              string                               `json:"key"`
	Status           worker.Status                        `json:"status"`
	Result           *string                              `json:"result,omitempty"`
	Warnings         []preserve.MissingPlaceholderWarning `json:"warnings,omitempty"`
	ProcessingTimeMs float64                              `json:"processingTimeMs,omitempty"`
	Error            string                               `json:"error,omitempty"`
}

// CatalogResponse lists transformations.
type CatalogResponse struct {
	Count      int                   `json:"count"`
	Transforms []output.CatalogEntry `json:"transforms"`
}

// HealthResponse is the body of GET /healthz. Checks is omitted when no
// readiness check is configured.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for _, c := range s.checks {
		if err := c.check(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "check", c.name, "error", err)
			resp.Checks[c.name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.name] = "ok"
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	res, err := s.runner.Run(r.Context(), pipeline.Request{
		Text:         req.Text,
		Key:          req.TransformationKey,
		Preservation: s.preservation(req),
	})
	if err != nil {
		s.fail(w, r, err, req.Text)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []preserve.MissingPlaceholderWarning{}
	}
	writeJSON(w, http.StatusOK, TransformResponse{
		Result:           res.Text,
		Warnings:         warnings,
		Tier:             res.Tier,
		ProcessingTimeMs: millis(res.Duration),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	var filter registry.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := registry.ParseCategory(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("unknown category %q", raw),
			})
			return
		}
		filter = c
	}

	entries := []output.CatalogEntry{}
	for d := range s.catalog.Descriptors() {
		if filter != "" && d.Category != filter {
			continue
		}
		entries = append(entries, output.NewCatalogEntry(d))
	}
	slices.SortFunc(entries, func(a, b output.CatalogEntry) int {
		return strings.Compare(a.Key, b.Key)
	})
	writeJSON(w, http.StatusOK, CatalogResponse{Count: len(entries), Transforms: entries})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	d, ok := s.catalog.Lookup(key)
	if !ok {
		s.fail(w, r, &dispatch.UnknownTransformError{Key: key}, "")
		return
	}
	writeJSON(w, http.StatusOK, output.NewCatalogEntry(d))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	// Reject what can be rejected now rather than in a job nobody polls.
	if _, ok := s.catalog.Lookup(req.TransformationKey); !ok {
		s.fail(w, r, &dispatch.UnknownTransformError{Key: req.TransformationKey}, req.Text)
		return
	}
	if len(req.Text) > s.maxBytes {
		s.fail(w, r, &pipeline.TooLargeError{Size: len(req.Text), Max: s.maxBytes}, req.Text)
		return
	}

	id, err := s.jobs.Submit(worker.Job{
		Key:          req.TransformationKey,
		Text:         req.Text,
		Preservation: s.preservation(req),
	})
	if err != nil {
		s.fail(w, r, err, req.Text)
		return
	}

	w.Header().Set("Location", "/v1/jobs/"+id)
	writeJSON(w, http.StatusAccepted, JobResponse{
		ID:     id,
		Key:    req.TransformationKey,
		Status: worker.StatusQueued,
	})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	c, err := s.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, newJobResponse(c))
}

func newJobResponse(c worker.Completion) JobResponse {
	resp := JobResponse{
		ID:     c.ID,
		Key:    c.Key,
		Status: c.Status,
		Error:  c.Error,
	}
	if c.Status.Finished() {
		resp.ProcessingTimeMs = millis(c.ProcessingTime)
	}
	if c.Result != nil {
		text := c.Result.Text
		resp.Result = &text
		resp.Warnings = c.Result.Warnings
	}
	return resp
}

// decode reads and validates a TransformRequest, writing the error response
// itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (TransformRequest, bool) {
	var req TransformRequest

	body := http.MaxBytesReader(w, r.Body, s.bodyLimit())
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.fail(w, r, err, "")
			return req, false
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid request body: %v", err),
		})
		return req, false
	}

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Text: req.Text})
		return req, false
	}
	return req, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, text string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Text: text})
}

// statusFor maps pipeline and worker errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, dispatch.ErrUnknownTransform), errors.Is(err, worker.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrInputTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrEncoding),
		errors.Is(err, dispatch.ErrTransformExecution),
		errors.Is(err, preserve.ErrTokenSpaceExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
