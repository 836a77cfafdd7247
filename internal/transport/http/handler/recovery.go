package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/recovery"
)

// RecoveryHandler exposes the three password recovery calls.
type RecoveryHandler struct {
	svc recovery.Service
	log *zap.Logger
}

func NewRecoveryHandler(svc recovery.Service, log *zap.Logger) *RecoveryHandler {
	return &RecoveryHandler{svc: svc, log: log}
}

func (h *RecoveryHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req recovery.RequestCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.RequestCode(r.Context(), req); err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent to your email", Success: true})
}

func (h *RecoveryHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req recovery.VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyCode(r.Context(), req)
	if err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message    string `json:"message"`
		ResetToken string `json:"reset_token,omitempty"`
		Success    bool   `json:"success"`
	}{Message: "OTP verified", ResetToken: res.ResetToken, Success: true})
}

func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req recovery.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password reset successfully", Success: true})
}
