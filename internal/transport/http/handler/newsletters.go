package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/access"
	"github.com/jobboard-api/internal/application/newsletter"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/transport/http/middleware"
)

type NewsletterHandler struct {
	svc newsletter.Service
	log *zap.Logger
}

func NewNewsletterHandler(svc newsletter.Service, log *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{svc: svc, log: log}
}

func (h *NewsletterHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req domain.CreateNewsletterRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.Create(r.Context(), p, req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, "Newsletter created successfully", n)
}

// List serves every newsletter the caller may see; the caller may be anonymous.
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, newsletter.ListRequest{Mode: access.ListAll})
}

func (h *NewsletterHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, newsletter.ListRequest{Mode: access.ListPublic})
}

// ListByAuthor honours ?include_private=true only for the author themselves.
func (h *NewsletterHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	includePrivate, _ := strconv.ParseBool(r.URL.Query().Get("include_private"))
	h.list(w, r, newsletter.ListRequest{
		Mode:           access.ListByAuthor,
		AuthorID:       chi.URLParam(r, "authorID"),
		IncludePrivate: includePrivate,
	})
}

func (h *NewsletterHandler) list(w http.ResponseWriter, r *http.Request, req newsletter.ListRequest) {
	viewer, _ := middleware.PrincipalFromContext(r.Context())
	items, err := h.svc.List(r.Context(), viewer, req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", items)
}

func (h *NewsletterHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req domain.UpdateNewsletterRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "Newsletter updated successfully", n)
}

func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Newsletter deleted successfully", Success: true})
}

func (h *NewsletterHandler) TogglePrivacy(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	n, err := h.svc.TogglePrivacy(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "Newsletter privacy updated", n)
}

// ── admin ────────────────────────────────────────────────────────────────────

func (h *NewsletterHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context())
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", items)
}

func (h *NewsletterHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "Newsletter status updated", n)
}
