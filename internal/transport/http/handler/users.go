package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/user"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/pkg/validate"
)

const (
	maxProfileUpload = 5 << 20
	// Parts beyond this spill to temp files.
	maxProfileMemory = 1 << 20
)

// UserHandler handles registration, profile and admin user endpoints.
type UserHandler struct {
	svc user.Service
	log *zap.Logger
}

func NewUserHandler(svc user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, "Account created successfully", u)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Get(r.Context(), p.UserID)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", u)
}

// UpdateProfile accepts JSON, or multipart form fields with an optional "file" resume.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var (
		req    domain.UpdateProfileRequest
		resume *user.Upload
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var (
			file multipart.File
			err  error
		)
		req, file, resume, err = parseProfileForm(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll()
		if file != nil {
			defer file.Close()
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	} else if !decode(w, r, &req) {
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), p.UserID, req, resume)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "Profile updated successfully", u)
}

func parseProfileForm(w http.ResponseWriter, r *http.Request) (domain.UpdateProfileRequest, multipart.File, *user.Upload, error) {
	var req domain.UpdateProfileRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxProfileUpload)
	if err := r.ParseMultipartForm(maxProfileMemory); err != nil {
		return req, nil, nil, errors.New("invalid multipart form")
	}
	field := func(name string) *string {
		if vs, ok := r.MultipartForm.Value[name]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	req.FullName = field("fullname")
	req.Email = field("email")
	req.Phone = field("phone_number")
	req.Bio = field("bio")
	req.Skills = field("skills")

	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil, nil
	}
	if err != nil {
		return req, nil, nil, errors.New("invalid resume upload")
	}
	return req, file, &user.Upload{Filename: hdr.Filename, Body: file}, nil
}

// ── admin ────────────────────────────────────────────────────────────────────

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "", u)
}

func (h *UserHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "User status updated", u)
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "User status updated", u)
}

func (h *UserHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ToggleVisibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, "User visibility updated", u)
}
