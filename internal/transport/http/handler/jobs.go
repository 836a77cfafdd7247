package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/job"
	"github.com/jobboard-api/internal/domain"
)

type JobHandler struct {
	svc job.Service
	log *zap.Logger
}

func NewJobHandler(svc job.Service, log *zap.Logger) *JobHandler {
	return &JobHandler{svc: svc, log: log}
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in domain.JobInput
	if !decode(w, r, &in) {
		return
	}
	j, err := h.svc.Create(r.Context(), p, in)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, "Job created successfully", j)
}

// List filters by the optional ?keyword= query parameter.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.List(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", jobs)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", j)
}

func (h *JobHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	jobs, err := h.svc.ListMine(r.Context(), p)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", jobs)
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in domain.JobInput
	if !decode(w, r, &in) {
		return
	}
	j, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), in)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "Job updated successfully", j)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Job deleted successfully", Success: true})
}
